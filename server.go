// server.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ctf-catalog/config"
	"ctf-catalog/controllers"
	"ctf-catalog/logger"
	"ctf-catalog/metrics"
	"ctf-catalog/middleware"
	"ctf-catalog/services"
	"ctf-catalog/views"
	"ctf-catalog/websocket"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	cleanupInterval = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	rateLimitExpiry = 10 * time.Minute
)

// server holds everything one running instance owns.
type server struct {
	cfg        *config.Config
	catalog    *services.CatalogStore
	store      services.SolvedStore
	pages      *websocket.Registry
	prometheus *metrics.Prometheus
	recorder   metrics.Recorder
	cloudWatch *metrics.CloudWatch
	skeleton   *html.Node
}

// newServer performs intake, opens the solved store and sets up metrics.
func newServer(ctx context.Context, cfg *config.Config) (*server, error) {
	skeleton, err := views.ParseSkeleton(cfg.Page.SkeletonPath)
	if err != nil {
		return nil, err
	}

	store, err := services.OpenSolvedStore(ctx, services.StoreOptions{
		Type:          cfg.Storage.Type,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open solved store: %w", err)
	}

	prom := metrics.NewPrometheus()
	recorder := metrics.Multi{prom}
	var cw *metrics.CloudWatch
	if cfg.Metrics.CloudWatch {
		cw, err = metrics.NewCloudWatch(cfg.Metrics.Namespace)
		if err != nil {
			logger.Warn.Printf("[newServer] CloudWatch disabled: %v", err)
			cw = nil
		} else {
			recorder = append(recorder, cw)
		}
	}

	return &server{
		cfg:        cfg,
		catalog:    services.NewCatalogStore(services.FileSource(cfg.Catalog.Path)),
		store:      store,
		pages: websocket.NewRegistry(cfg.Page.IdleTimeout, recorder,
			websocket.WithConnectGrace(cfg.Page.ConnectGrace),
			websocket.WithPageLimits(cfg.Page.MaxPagesPerBrowser, cfg.Page.MaxPages),
		),
		prometheus: prom,
		recorder:   recorder,
		cloudWatch: cw,
		skeleton:   skeleton,
	}, nil
}

// router builds the gin engine with every route.
func (s *server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.SecureHeaders(), s.prometheus.Middleware())

	limiter := middleware.NewRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, rateLimitExpiry)
	router.Use(limiter.Middleware())

	// Initialize session store
	store := cookie.NewStore([]byte(s.cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   s.cfg.Server.Mode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("ctfsession", store))
	router.Use(middleware.BrowserIdentity())

	pc := controllers.NewPageController(s.catalog, s.pages, s.store, s.skeleton, controllers.PageSettings{
		VerifyDelay:     s.cfg.Page.VerifyDelay,
		FeedbackTimeout: s.cfg.Page.FeedbackTimeout,
		ApplicationURL:  s.cfg.Server.ApplicationURL,
		WebsocketURL:    s.cfg.Server.WebsocketURL,
	}, s.recorder)
	ac := controllers.NewAdminController(s.cfg.Admin.PasswordHash, s.catalog, s.pages)

	router.Static("/static", s.cfg.Server.StaticDir)

	router.GET("/", pc.Index)
	router.GET("/ui", pc.ServeUI)
	router.GET("/health", controllers.Health)
	router.GET("/api/stats", pc.Stats)
	router.GET("/qrcode", pc.QRCode)
	router.GET("/metrics", s.prometheus.Handler())

	router.POST("/admin/login", ac.Login)
	router.POST("/admin/logout", ac.Logout)
	admin := router.Group("/admin", middleware.AdminRequired())
	{
		admin.POST("/reload", ac.Reload)
		admin.GET("/status", ac.Status)
	}
	return router
}

// run serves HTTP until ctx is done, alongside the catalog watcher and idle page cleanup.
func (s *server) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.router(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info.Printf("[run] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info.Println("[run] shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if s.cfg.Catalog.Watch {
		g.Go(func() error {
			// a watcher that cannot start only costs hot reload
			if err := services.WatchCatalog(ctx, s.cfg.Catalog.Path, s.catalog); err != nil {
				logger.Error.Printf("[run] catalog watcher stopped: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return s.pages.RunCleanup(ctx, cleanupInterval)
	})

	return g.Wait()
}

// close stops every page, flushes queued metrics and releases the store.
func (s *server) close() {
	s.pages.Close()
	if s.cloudWatch != nil {
		s.cloudWatch.Close()
	}
	if err := s.store.Close(); err != nil {
		logger.Warn.Printf("[close] solved store: %v", err)
	}
}
