// file: logger/logger_test.go
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	opts := DefaultOptions()
	opts.File = path
	require.NoError(t, InitLogger(opts))
	t.Cleanup(func() { _ = InitLogger(Options{}) })

	Info.Printf("[TestInitLogger] collection %d loaded", 7)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"[TestInitLogger] collection 7 loaded"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestInitLogger_RejectsBadSize(t *testing.T) {
	err := InitLogger(Options{File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestSetLogLevel_ProductionDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	opts := DefaultOptions()
	opts.File = path
	require.NoError(t, InitLogger(opts))
	t.Cleanup(func() {
		SetLogLevel("development")
		_ = InitLogger(Options{})
	})

	SetLogLevel("production")
	Debug.Println("hidden debug line")
	Warn.Println("visible warning")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden debug line")
	assert.Contains(t, string(data), "visible warning")
}
