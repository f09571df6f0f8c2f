//go:build integration
// +build integration

// integration/connection_test.go
package integration

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"ctf-catalog/controllers"
	"ctf-catalog/middleware"
	"ctf-catalog/models"
	"ctf-catalog/page"
	"ctf-catalog/services"
	"ctf-catalog/views"
	websocket2 "ctf-catalog/websocket"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flag(s string) *string { return &s }

var pageIDAttr = regexp.MustCompile(`data-page-id="([^"]+)"`)

// Helper function to start the full HTTP surface over a one-collection catalog
func startTestServer(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	cat := &models.Catalog{Collections: []models.Collection{{
		ID: 1, Title: "Harbour Hunt", TotalChallenges: 1,
		Challenges: models.Challenges{Easy: []models.Challenge{{Name: "lighthouse", Answer: flag("BEAM")}}},
	}}}
	store := services.NewCatalogStore(func() (*models.Catalog, error) { return cat, nil })
	registry := websocket2.NewRegistry(0, nil)
	t.Cleanup(registry.Close)

	pc := controllers.NewPageController(store, registry, services.NewMemorySolvedStore(services.DefaultKeyPrefix), nil,
		controllers.PageSettings{VerifyDelay: 10 * time.Millisecond, FeedbackTimeout: time.Second}, nil)

	router := gin.New()
	router.Use(sessions.Sessions("ctfsession", cookie.NewStore([]byte("secret"))))
	router.Use(middleware.BrowserIdentity())
	router.GET("/", pc.Index)
	router.GET("/ui", pc.ServeUI)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// openPage loads the index and dials its socket with the same cookies.
func openPage(t *testing.T, server *httptest.Server) *websocket.Conn {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body strings.Builder
	_, err = io.Copy(&body, resp.Body)
	require.NoError(t, err)
	m := pageIDAttr.FindStringSubmatch(body.String())
	require.Len(t, m, 2)

	u, _ := url.Parse(server.URL)
	header := http.Header{}
	for _, c := range jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	header.Set("Test-Mode", "true")
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ui?page=" + m[1]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err, "WebSocket connection should succeed")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads patch frames until match accepts one of the patches.
func readUntil(t *testing.T, conn *websocket.Conn, match func(page.Patch) bool) {
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg websocket2.PatchMessage
		require.NoError(t, conn.ReadJSON(&msg), "expected a patch frame")
		for _, p := range msg.Patches {
			if match(p) {
				return
			}
		}
	}
}

// TestCatalogSession opens a collection and solves a challenge over the socket.
func TestCatalogSession(t *testing.T) {
	server := startTestServer(t)
	conn := openPage(t, server)

	require.NoError(t, conn.WriteJSON(page.Event{Role: page.RoleCard, Kind: page.KindClick, Target: views.CardID(1)}))
	readUntil(t, conn, func(p page.Patch) bool {
		return p.Op == page.OpInner && p.Target == views.ContainerID(models.DifficultyEasy) && strings.Contains(p.HTML, "lighthouse")
	})

	handle := "ch1"
	require.NoError(t, conn.WriteJSON(page.Event{
		Role: page.RoleVerify, Kind: page.KindClick, Target: views.ButtonID(handle), Value: "  beam ",
	}))

	var success bool
	readUntil(t, conn, func(p page.Patch) bool {
		if p.Op == page.OpText && p.Target == views.FeedbackID(handle) {
			success = p.Value == views.MsgCorrect
			return true
		}
		return false
	})
	assert.True(t, success, "answer is accepted after normalization")
}

// TestUnknownPageRejected checks a socket cannot attach to a page it did not open.
func TestUnknownPageRejected(t *testing.T) {
	server := startTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ui?page=nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Test-Mode": {"true"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
