package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookswap/internal/collection"
	"bookswap/internal/confirm"
	"bookswap/internal/listing"
	"bookswap/internal/logger"
	"bookswap/internal/storage"
	synchub "bookswap/internal/sync"
	"bookswap/internal/wishlist"
	"bookswap/pkg/database"
	"bookswap/pkg/seed"
	"bookswap/pkg/utils"
)

type app struct {
	listings      *listing.Store
	wishlist      *wishlist.Store
	confirmations *confirm.Registry
	hub           *synchub.Hub
	db            *sql.DB // nil unless persistence is enabled
}

func main() {
	cfg := utils.LoadServerConfig()
	log := logger.Setup(logger.Config{
		Level:  cfg.LogLevel,
		Format: logger.ParseLogFormat(cfg.LogFormat),
	})

	sd, err := seed.Load(cfg.SeedPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load seed failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, sd)
	if err != nil {
		log.Fatal().Err(err).Msg("init failed")
	}
	if a.db != nil {
		defer a.db.Close()
	}

	router := newRouter(a)
	tcpSrv := synchub.NewServer(cfg.SyncAddr, a.hub)
	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepConfirmations(ctx, a.confirmations, cfg.ConfirmTTL)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		stop()
	}

	log.Info().Msg("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := tcpSrv.Close(); err != nil {
		log.Error().Err(err).Msg("tcp shutdown error")
	}
	a.hub.Close()

	wg.Wait()
	log.Info().Msg("servers stopped")
}

// newApp builds the stores for one session. With persistence on, the last
// saved snapshots replace the seed.
func newApp(ctx context.Context, cfg utils.ServerConfig, sd seed.Seed) (*app, error) {
	a := &app{
		confirmations: confirm.NewRegistry(cfg.ConfirmTTL),
	}

	listingSeed, wishSeed := sd.Listings, sd.Wishlist
	var listingOpts, wishOpts []collection.Option
	var repo *storage.Repo

	if cfg.Persist {
		dbCfg := database.DefaultConfig()
		db, err := database.Open(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		repo = storage.NewRepo(db)

		if listingSeed, listingOpts, err = repo.Restore(ctx, listing.CollectionName, sd.Listings); err != nil {
			_ = db.Close()
			return nil, err
		}
		if wishSeed, wishOpts, err = repo.Restore(ctx, wishlist.CollectionName, sd.Wishlist); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Get().Info().Str("db", dbCfg.Path).Msg("persistence enabled")
	}

	var err error
	if a.listings, err = listing.NewStore(listingSeed, listingOpts...); err != nil {
		return nil, err
	}
	if a.wishlist, err = wishlist.NewStore(wishSeed, wishOpts...); err != nil {
		return nil, err
	}

	a.hub = synchub.NewHub(a.listings.Snapshot, a.wishlist.Snapshot)
	a.listings.Subscribe(a.hub.Publisher())
	a.wishlist.Subscribe(a.hub.Publisher())
	if repo != nil {
		a.listings.Subscribe(repo.Recorder(context.WithoutCancel(ctx)))
		a.wishlist.Subscribe(repo.Recorder(context.WithoutCancel(ctx)))
	}
	return a, nil
}

func newRouter(a *app) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware())

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", synchub.WSHandler(a.hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := a.hub.Stats()
		resp := gin.H{
			"status":      "ready",
			"listings":    len(a.listings.List()),
			"wishlist":    len(a.wishlist.List()),
			"pending":     len(a.confirmations.Pending()),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		}

		if a.db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := a.db.PingContext(ctx); err != nil {
				resp["status"] = "not_ready"
				resp["db_error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
			resp["db"] = "ok"
		}

		c.JSON(http.StatusOK, resp)
	})

	api := router.Group("")
	listing.NewHandler(a.listings, a.confirmations).RegisterRoutes(api)
	wishlist.NewHandler(a.wishlist).RegisterRoutes(api)
	confirm.NewHandler(a.confirmations).RegisterRoutes(api)

	return router
}

// sweepConfirmations cancels abandoned delete prompts until ctx is done.
func sweepConfirmations(ctx context.Context, reg *confirm.Registry, ttl time.Duration) {
	if ttl <= 0 {
		<-ctx.Done()
		return
	}

	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logger.Component("confirm")
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := reg.Sweep(now.UTC()); n > 0 {
				log.Info().Int("expired", n).Msg("cancelled abandoned confirmations")
			}
		}
	}
}
