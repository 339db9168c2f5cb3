package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blockedby/recruiting-os/internal/api"
	"github.com/blockedby/recruiting-os/internal/cache"
	"github.com/blockedby/recruiting-os/internal/config"
	"github.com/blockedby/recruiting-os/internal/database"
	"github.com/blockedby/recruiting-os/internal/logger"
	"github.com/blockedby/recruiting-os/internal/migrator"
	"github.com/blockedby/recruiting-os/internal/nats"
	"github.com/blockedby/recruiting-os/internal/notify"
	"github.com/blockedby/recruiting-os/internal/resource"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
	"github.com/blockedby/recruiting-os/internal/web"
	"github.com/blockedby/recruiting-os/migrations"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting admin dashboard service")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Connect to storage
	var store storage.Store
	switch cfg.DatabaseDriver {
	case "sqlite":
		gdb, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite database")
		}
		gormStore := storage.NewGorm(gdb, schema.All())
		if err := gormStore.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate sqlite database")
		}
		store = gormStore

	case "gorm-postgres":
		gdb, err := database.NewGormPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open gorm postgres database")
		}
		gormStore := storage.NewGorm(gdb, schema.All())
		if err := gormStore.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate gorm postgres database")
		}
		store = gormStore

	default:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		m, err := migrator.NewWithFS(migrations.FS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load migrations")
		}
		if err := m.Up(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		store = storage.NewPostgres(db.Pool, schema.All())
	}

	// 5. Connect to NATS
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, notification publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, "ADMIN_NOTIFY", []string{"admin.notify.*"}); err != nil {
			log.Warn().Err(err).Msg("failed to ensure notify stream")
		}
	}

	// 6. Initialize WebSocket hub
	hub := web.NewHub()
	go hub.Run()

	// 7. Build the notifier chain
	notifiers := []notify.Notifier{
		notify.NewLog(log),
		web.NewNotifyBroadcaster(hub),
	}
	if nc != nil {
		notifiers = append(notifiers, notify.NewNATS(nc, log))
	}
	notifier := notify.NewMulti(notifiers...)

	// 8. Initialize collection cache
	c := cache.New(store, cache.WithOnRefresh(func(entity string, snap cache.Snapshot) {
		hub.Broadcast(web.RefreshedEvent(entity, string(snap.State), len(snap.Records)))
	}))

	// 9. Initialize one resource manager per entity type
	sink := web.NewHubSink(hub)
	resources := make([]api.Resource, 0, len(schema.All()))
	for _, s := range schema.All() {
		mgr := resource.NewManager(s, store, c, notifier, log, resource.WithEvents(sink))
		resources = append(resources, mgr)
	}

	// 10. Initialize API server
	apiCfg := &api.Config{
		Port:        cfg.HTTPPort,
		Title:       "Recruiting Admin API",
		Description: "CRUD API for the recruiting admin dashboard",
		Version:     "1.0.0",
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	}
	server := api.NewServer(apiCfg, resources)

	// 11. Mount the WebSocket endpoint
	server.Mux().HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		web.ServeWs(hub, w, r)
	})

	// 12. Start server
	log.Info().Int("port", cfg.HTTPPort).Msg("starting api server")
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// 13. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutdown complete")
}
