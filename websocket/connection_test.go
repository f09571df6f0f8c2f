// file: websocket/connection_test.go

// Unit tests for connection.go. A fakeConn stands in for the socket so the pumps can be
// exercised without network I/O.

package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"ctf-catalog/page"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	messageType int
	data        []byte
}

// fakeConn implements WSConn. Reads are served from a channel; writes are recorded.
type fakeConn struct {
	mu      sync.Mutex
	reads   chan frame
	written [][]byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan frame, 16)}
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.closed {
		return errors.New("closed")
	}
	if messageType == websocket.TextMessage {
		fc.written = append(fc.written, data)
	}
	return nil
}

func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	f, ok := <-fc.reads
	if !ok {
		return 0, nil, errors.New("closed")
	}
	return f.messageType, f.data, nil
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if !fc.closed {
		fc.closed = true
		close(fc.reads)
	}
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(int64)                {}
func (fc *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (fc *fakeConn) SetPongHandler(func(string) error) {}

func (fc *fakeConn) frames() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([][]byte(nil), fc.written...)
}

type recordingPoster struct {
	mu     sync.Mutex
	events []page.Event
	err    error
}

func (p *recordingPoster) Post(ev page.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPoster) got() []page.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]page.Event(nil), p.events...)
}

func TestReadPump_DecodesEvents(t *testing.T) {
	fc := newFakeConn()
	poster := &recordingPoster{}
	c := newConnection(fc, poster)

	fc.reads <- frame{websocket.TextMessage, []byte(`{"role":"verify","kind":"click","target":"verify-ch1","value":"FLAG1"}`)}
	fc.reads <- frame{websocket.TextMessage, []byte(`not json`)}
	fc.reads <- frame{websocket.BinaryMessage, []byte(`{"role":"card"}`)}
	fc.reads <- frame{websocket.TextMessage, []byte(`{"role":"window","kind":"scroll","value":"120"}`)}

	closed := make(chan struct{})
	go c.readPump(func() { close(closed) })

	require.Eventually(t, func() bool { return len(poster.got()) == 2 }, time.Second, 5*time.Millisecond)
	_ = fc.Close()
	<-closed

	events := poster.got()
	assert.Equal(t, page.Event{Role: page.RoleVerify, Kind: page.KindClick, Target: "verify-ch1", Value: "FLAG1"}, events[0])
	assert.Equal(t, page.RoleWindow, events[1].Role)
}

func TestReadPump_StopsWhenPageIsGone(t *testing.T) {
	fc := newFakeConn()
	poster := &recordingPoster{err: page.ErrPageClosed}
	c := newConnection(fc, poster)

	fc.reads <- frame{websocket.TextMessage, []byte(`{"role":"card","kind":"click"}`)}
	done := make(chan struct{})
	go func() {
		c.readPump(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readPump did not stop")
	}
	assert.ErrorIs(t, c.SendPatches([]page.Patch{{Op: page.OpText, Target: "x"}}), ErrConnectionClosed)
}

func TestWritePump_SendsPatchFrames(t *testing.T) {
	fc := newFakeConn()
	c := newConnection(fc, &recordingPoster{})
	go c.writePump()
	defer c.close()

	require.NoError(t, c.SendPatches([]page.Patch{{Op: page.OpAttr, Target: "ctfModal", Name: "style", Value: "display: block"}}))

	require.Eventually(t, func() bool { return len(fc.frames()) == 1 }, time.Second, 5*time.Millisecond)
	var msg PatchMessage
	require.NoError(t, json.Unmarshal(fc.frames()[0], &msg))
	require.Len(t, msg.Patches, 1)
	assert.Equal(t, page.OpAttr, msg.Patches[0].Op)
	assert.Equal(t, "display: block", msg.Patches[0].Value)
}

func TestSendPatches_FullBufferDrops(t *testing.T) {
	c := newConnection(newFakeConn(), &recordingPoster{})
	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, c.SendPatches([]page.Patch{{Op: page.OpText, Target: "t"}}))
	}
	assert.ErrorIs(t, c.SendPatches([]page.Patch{{Op: page.OpText, Target: "t"}}), ErrSendBufferFull)
}
