package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/contentbackport/api/rest"
	"github.com/kasuganosora/contentbackport/audit"
	"github.com/kasuganosora/contentbackport/cache"
	"github.com/kasuganosora/contentbackport/catalog"
	"github.com/kasuganosora/contentbackport/config"
	dbadapter "github.com/kasuganosora/contentbackport/db"
	"github.com/kasuganosora/contentbackport/generator"
	mw "github.com/kasuganosora/contentbackport/middleware"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/mongoid"
	"github.com/kasuganosora/contentbackport/pipeline"
	"github.com/kasuganosora/contentbackport/resource"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	if err := run(cfgPath); err != nil {
		log.Fatalf("%v", err)
	}
}

// run performs one backport and optionally serves the read API. Every
// resource it opens is released before it returns.
func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		RedisKeyPrefix:  cfg.Cache.RedisKeyPrefix,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close(c)
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Content pack ----
	ref, err := resource.NewLoader(cfg.Data.PackPath, cfg.Backport.Locales, cfg.Backport.CategorySets).Load()
	if err != nil {
		return fmt.Errorf("content pack: %w", err)
	}
	logger.Info("Content pack loaded",
		zap.String("path", cfg.Data.PackPath),
		zap.Int("items", len(ref.CandidateIDs())))

	// ---- Host catalog ----
	host, err := catalog.Load(cfg.Data.HostPath)
	if err != nil {
		return fmt.Errorf("host catalog: %w", err)
	}
	logger.Info("Host catalog loaded",
		zap.String("path", cfg.Data.HostPath),
		zap.Int("items", len(host.ItemIDs())))

	// ---- Backport ----
	res, err := pipeline.New(ref, host, pipeline.Options{
		Locales:          cfg.Backport.Locales,
		CategorySets:     cfg.Backport.CategorySets,
		AssortCategories: cfg.Backport.AssortCategories,
		RefSellsGPCoin:   cfg.Backport.RefSellsGPCoin,
		GPCoinPrice:      cfg.Backport.GPCoinPrice,
		DryRun:           cfg.Backport.DryRun,
		LockTTL:          cfg.Backport.LockTTL,
		NewID:            mongoid.New,
	}, pipeline.Deps{Cache: c, Recorder: auditSvc, Logger: logger}).Run(ctx)
	if err != nil {
		return fmt.Errorf("backport: %w", err)
	}
	for _, e := range res.Errors {
		logger.Warn("entity skipped", zap.Error(e))
	}

	if cfg.Data.OutputPath != "" {
		if err := generator.New(cfg.Data.OutputPath, logger).Write(res); err != nil {
			return fmt.Errorf("generator: %w", err)
		}
	}

	if !cfg.Server.Serve {
		return nil
	}

	// ---- Read API ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := newRouter(ctx, cfg, host, c, auditSvc, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("Server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newRouter builds the read API. Client IP headers are honoured only from
// security.trusted_proxies.
func newRouter(ctx context.Context, cfg *config.Config, host *catalog.Tables, c cache.Cache, logs apirest.RunLogReader, logger *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	apirest.Register(r,
		apirest.NewCatalogHandler(host),
		apirest.NewBackportHandler(c, logs, logger),
		cfg.Security.AdminIPs)
	return r, nil
}
