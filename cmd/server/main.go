package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/application/analytics"
	"github.com/mayasquare/sales-analytics/internal/domain/order"
	"github.com/mayasquare/sales-analytics/internal/domain/report"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/cache"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/config"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/ecommerce"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/logger"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/persistence"
	"github.com/mayasquare/sales-analytics/internal/interfaces/http/handler"
	"github.com/mayasquare/sales-analytics/internal/interfaces/http/middleware"
	"github.com/mayasquare/sales-analytics/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting sales analytics backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("source", cfg.Source.Mode),
	)

	// Store identifier annotates each pulled order with a store label
	identifier := ecommerce.NewStoreIdentifier(
		cfg.Store.IdentificationMethod,
		cfg.Store.MetadataField,
		storeMappings(cfg.Store.Mappings),
		ecommerce.WithIdentifierLogger(log),
	)

	source, err := buildOrderSource(cfg, identifier, log)
	if err != nil {
		log.Fatal("Failed to configure order source", zap.Error(err))
	}

	reportCache, err := cache.NewReportCacheFactory(cfg.Cache, cfg.Redis,
		cache.WithFactoryLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create report cache", zap.Error(err))
	}
	defer func() {
		if err := reportCache.Close(); err != nil {
			log.Error("Error closing report cache", zap.Error(err))
		}
	}()

	serviceOpts := []analytics.ServiceOption{
		analytics.WithServiceLogger(log),
		analytics.WithCurrency(cfg.Report.Currency),
		analytics.WithLimits(report.Limits{
			TopProducts:     cfg.Report.TopProducts,
			TopStores:       cfg.Report.TopStores,
			TopCombinations: cfg.Report.TopCombinations,
		}),
	}

	// Optional order snapshot persistence
	var db *persistence.Database
	if cfg.Database.Enabled {
		db, err = persistence.NewDatabase(&cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

		serviceOpts = append(serviceOpts,
			analytics.WithRepository(persistence.NewGormOrderRepository(db.DB)))
	}

	service, err := analytics.NewService(source, reportCache, serviceOpts...)
	if err != nil {
		log.Fatal("Failed to create analytics service", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	router.NewRouter(engine).
		Register(handler.NewReportHandler(service)).
		Register(handler.NewSystemHandler()).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}

// buildOrderSource wires the order source selected by source.mode
func buildOrderSource(cfg *config.Config, identifier *ecommerce.StoreIdentifier, log *zap.Logger) (analytics.OrderSource, error) {
	switch cfg.Source.Mode {
	case "csv":
		src := ecommerce.NewCSVSource(cfg.Source.CSVPath, cfg.Report.Currency, identifier,
			ecommerce.WithCSVLogger(log))
		return src, nil

	default: // api
		adapter, err := ecommerce.NewWooCommerceAdapter(&ecommerce.WooCommerceConfig{
			BaseURL:        cfg.WooCommerce.BaseURL,
			ConsumerKey:    cfg.WooCommerce.ConsumerKey,
			ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
			PerPage:        cfg.WooCommerce.PerPage,
			Statuses:       cfg.WooCommerce.Statuses,
			TimeoutSeconds: cfg.WooCommerce.TimeoutSeconds,
		}, identifier, ecommerce.WithAdapterLogger(log))
		if err != nil {
			return nil, err
		}

		req, err := pullRequest(cfg.WooCommerce)
		if err != nil {
			return nil, err
		}
		return analytics.SourceFunc(func(ctx context.Context) ([]order.Order, error) {
			return adapter.PullOrders(ctx, req)
		}), nil
	}
}

// pullRequest builds the date window for API pulls
func pullRequest(cfg config.WooCommerceConfig) (ecommerce.PullRequest, error) {
	var req ecommerce.PullRequest
	if cfg.StartDate != "" {
		after, err := time.Parse(time.RFC3339, cfg.StartDate)
		if err != nil {
			return req, err
		}
		req.After = after
	}
	if cfg.EndDate != "" {
		before, err := time.Parse(time.RFC3339, cfg.EndDate)
		if err != nil {
			return req, err
		}
		req.Before = before
	}
	return req, nil
}

// storeMappings converts configured mappings to identifier mappings
func storeMappings(mappings []config.StoreMapping) []ecommerce.StoreMapping {
	out := make([]ecommerce.StoreMapping, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, ecommerce.StoreMapping{
			CityPattern:  m.CityPattern,
			StatePattern: m.StatePattern,
			Store:        m.Store,
		})
	}
	return out
}

// healthHandler reports liveness, including database reachability when
// persistence is enabled
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		code := http.StatusOK

		if db != nil {
			if err := db.Ping(); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				code = http.StatusServiceUnavailable
			} else {
				status["database"] = "ok"
			}
		}

		c.JSON(code, status)
	}
}
