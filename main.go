package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/config"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/db"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/gelf"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/handler"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/janitor"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/metrics"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/repository"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/repository/mongorepo"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/router"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/service"
)

// stores bundles one driver's repositories.
type stores struct {
	research service.ResearchStore
	data     service.DataStore
	users    service.UserStore
	health   handler.Pinger
	close    func()
}

func main() {
	configPath := flag.String("config", os.Getenv("RESEARCH_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr, "research")
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			defer gelfWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer st.close()

	collector := metrics.NewCollector(cfg.Metrics.Namespace, nil)

	// Services
	authSvc := service.NewAuthService(st.users, cfg.JWTSecret)
	researchSvc := service.NewResearchService(st.research)
	dataSvc := service.NewDataService(st.data, st.research)
	exportSvc := service.NewExportService(st.data, st.research, cfg.Export.MediaRoot, collector)

	// Router
	r := router.New(cfg.JWTSecret, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Research:  handler.NewResearchHandler(researchSvc),
		Data:      handler.NewDataHandler(dataSvc),
		Export:    handler.NewExportHandler(exportSvc),
		Dashboard: handler.NewDashboardHandler(researchSvc, dataSvc),
		Health:    handler.NewHealthHandler(st.health),
	}, collector)

	sweeper := janitor.New(cfg.Export.MediaRoot, service.TempSuffix, cfg.Export.SweepSchedule, cfg.Export.SweepAge, collector)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start export janitor: %v", err)
	}

	// Indexes and the admin account are created in the background so a
	// slow index build never delays the listener.
	go func() {
		log.Printf("Background init: starting")
		for name, ensure := range map[string]func(context.Context) error{
			"user":     st.users.EnsureIndexes,
			"research": st.research.EnsureIndexes,
			"data":     st.data.EnsureIndexes,
		} {
			start := time.Now()
			if err := ensure(ctx); err != nil {
				log.Printf("Warning: %s index creation failed: %v", name, err)
				continue
			}
			log.Printf("Background init: %s indexes ready (%s)", name, time.Since(start).Round(time.Millisecond))
		}
		if err := authSvc.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPass); err != nil {
			log.Printf("Warning: failed to seed admin: %v", err)
		}
		log.Printf("Background init: all done")
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("Research server starting on %s (store: %s)", cfg.HTTPAddr, cfg.Store.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	sweeper.Stop()
}

func openStores(ctx context.Context, cfg config.StoreConfig) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		ms, err := mongorepo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		log.Printf("Connected to MongoDB database %q", cfg.MongoDB)
		return &stores{
			research: ms.Research(),
			data:     ms.Data(),
			users:    ms.Users(),
			health:   ms,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				ms.Close(closeCtx)
			},
		}, nil

	default:
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		log.Printf("Connected to OxiDB at %s:%d (pool size: %d)", cfg.OxiDBHost, cfg.OxiDBPort, pool.Size())
		return &stores{
			research: repository.NewResearchRepo(pool),
			data:     repository.NewDataRepo(pool),
			users:    repository.NewUserRepo(pool),
			health:   pool,
			close:    pool.Close,
		}, nil
	}
}
