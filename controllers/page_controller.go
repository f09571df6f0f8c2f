// Package controllers provides the HTTP handlers of the catalog server.
// File: controllers/page_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"ctf-catalog/logger"
	"ctf-catalog/middleware"
	"ctf-catalog/page"
	"ctf-catalog/services"
	"ctf-catalog/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"golang.org/x/net/html"
)

// qrCodeSize is the edge length of generated QR code PNGs.
const qrCodeSize = 300

// PageSettings are the per-page timings and the URLs handed to the browser.
type PageSettings struct {
	VerifyDelay     time.Duration
	FeedbackTimeout time.Duration
	ApplicationURL  string
	WebsocketURL    string
}

// PageController opens catalog pages and serves their sockets.
type PageController struct {
	Catalog  *services.CatalogStore
	Pages    *websocket.Registry
	Sockets  *websocket.Handler
	Store    services.SolvedStore
	Skeleton *html.Node
	Settings PageSettings
	Recorder services.OutcomeRecorder
	// NewDelayer overrides the timer source of new pages; nil uses the clock.
	NewDelayer func() services.Delayer
	// Encode overrides the QR encoder; nil uses qrcode.Encode.
	Encode services.QRCodeEncoder
}

// NewPageController wires a controller with a fresh socket handler over pages.
func NewPageController(catalog *services.CatalogStore, pages *websocket.Registry, store services.SolvedStore,
	skeleton *html.Node, settings PageSettings, recorder services.OutcomeRecorder) *PageController {
	return &PageController{
		Catalog:  catalog,
		Pages:    pages,
		Sockets:  websocket.NewHandler(pages),
		Store:    store,
		Skeleton: skeleton,
		Settings: settings,
		Recorder: recorder,
	}
}

// Index builds a new page from the current catalog snapshot and returns its document.
// The page stays registered so the socket on /ui can drive it.
func (pc *PageController) Index(c *gin.Context) {
	owner := middleware.BrowserID(c)
	id := uuid.NewString()

	opts := page.Options{
		Owner:           owner,
		Skeleton:        pc.Skeleton,
		Snapshot:        pc.Catalog.Current(),
		Store:           pc.Store,
		VerifyDelay:     pc.Settings.VerifyDelay,
		FeedbackTimeout: pc.Settings.FeedbackTimeout,
		Recorder:        pc.Recorder,
		BodyData: map[string]string{
			"page-id": id,
			"ws-url":  pc.Settings.WebsocketURL,
		},
	}
	if pc.NewDelayer != nil {
		opts.Delayer = pc.NewDelayer()
	}

	view, err := page.New(id, opts)
	if err != nil {
		logger.Error.Printf("[Index] could not build page: %v", err)
		c.String(http.StatusInternalServerError, "Page could not be built")
		return
	}
	// rendered before the loop starts so no lock is needed
	body := view.HTML()
	if err := pc.Pages.Add(view, owner); err != nil {
		logger.Warn.Printf("[Index] page not opened for browser %s: %v", owner, err)
		c.String(http.StatusTooManyRequests, "Too many open pages, close a tab and retry")
		return
	}

	logger.Info.Printf("[Index] page %s opened for browser %s", id, owner)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

// ServeUI upgrades the request to the page socket.
func (pc *PageController) ServeUI(c *gin.Context) {
	pc.Sockets.ServeWs(c.Writer, c.Request, middleware.BrowserID(c))
}

// Stats reports the active catalog and the number of open pages.
func (pc *PageController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, catalogStats(pc.Catalog.Current(), pc.Pages))
}

func catalogStats(snap *services.Snapshot, pages *websocket.Registry) gin.H {
	h := gin.H{
		"collections":     snap.Stats.CollectionCount,
		"totalChallenges": snap.Stats.TotalChallenges,
		"livePages":       pages.Len(),
	}
	if snap.Err != nil {
		h["error"] = snap.Err.Error()
	}
	return h
}

// QRCode returns a PNG pointing at a collection's repository (?ctf=<id>) or at the site.
func (pc *PageController) QRCode(c *gin.Context) {
	collectionID := 0
	if raw := c.Query("ctf"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid collection id")
			return
		}
		collectionID = id
	}

	target, err := services.QRCodeTarget(pc.Catalog.Current().Catalog, collectionID, pc.Settings.ApplicationURL)
	if err != nil {
		logger.Warn.Printf("[QRCode] %v", err)
		c.String(http.StatusNotFound, "Collection not found")
		return
	}

	encode := pc.Encode
	if encode == nil {
		encode = services.QRCodeEncoder(qrcode.Encode)
	}
	png, err := services.GenerateQRCode(target, qrCodeSize, encode)
	if err != nil {
		logger.Error.Printf("[QRCode] Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	c.Data(http.StatusOK, "image/png", png)
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	logger.Debug.Println("[Health] Health check requested")
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
