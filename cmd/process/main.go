package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mayasquare/sales-analytics/internal/application/analytics"
	"github.com/mayasquare/sales-analytics/internal/domain/order"
	"github.com/mayasquare/sales-analytics/internal/domain/report"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/config"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/ecommerce"
	"github.com/mayasquare/sales-analytics/internal/infrastructure/logger"
)

// process pulls orders once, runs every aggregation pass and writes the
// assembled report to disk, with optional CSV exports alongside it.
func main() {
	var (
		csvPath   string
		outPath   string
		exportDir string
		logLevel  string
	)

	flag.StringVar(&csvPath, "csv", "", "Read orders from a CSV export instead of the configured source")
	flag.StringVar(&outPath, "out", "data/processed-data.json", "Path of the report JSON to write")
	flag.StringVar(&exportDir, "export-dir", "", "Also write products/stores/matrix CSV exports to this directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// The -csv flag takes the documented env override path so it is
	// applied before configuration validation runs.
	if csvPath != "" {
		os.Setenv("SALES_SOURCE_MODE", "csv")
		os.Setenv("SALES_SOURCE_CSV_PATH", csvPath)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

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

	ctx := context.Background()
	start := time.Now()

	orders, err := source.PullOrders(ctx)
	if err != nil {
		log.Fatal("Failed to pull orders", zap.Error(err))
	}
	log.Info("Pulled orders", zap.Int("count", len(orders)))

	rep := report.BuildWithLimits(orders, cfg.Report.Currency, time.Now(), report.Limits{
		TopProducts:     cfg.Report.TopProducts,
		TopStores:       cfg.Report.TopStores,
		TopCombinations: cfg.Report.TopCombinations,
	})

	if err := writeReport(outPath, rep); err != nil {
		log.Fatal("Failed to write report", zap.Error(err))
	}
	log.Info("Wrote report",
		zap.String("path", outPath),
		zap.Int("order_count", rep.Metadata.OrderCount),
		zap.Float64("total_revenue", rep.Metadata.TotalRevenue),
		zap.Duration("elapsed", time.Since(start)))

	if exportDir != "" {
		if err := writeExports(exportDir, rep); err != nil {
			log.Fatal("Failed to write CSV exports", zap.Error(err))
		}
		log.Info("Wrote CSV exports", zap.String("dir", exportDir))
	}
}

// buildOrderSource wires the order source selected by source.mode
func buildOrderSource(cfg *config.Config, identifier *ecommerce.StoreIdentifier, log *zap.Logger) (analytics.OrderSource, error) {
	switch cfg.Source.Mode {
	case "csv":
		return ecommerce.NewCSVSource(cfg.Source.CSVPath, cfg.Report.Currency, identifier,
			ecommerce.WithCSVLogger(log)), nil

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

		var req ecommerce.PullRequest
		if cfg.WooCommerce.StartDate != "" {
			req.After, err = time.Parse(time.RFC3339, cfg.WooCommerce.StartDate)
			if err != nil {
				return nil, err
			}
		}
		if cfg.WooCommerce.EndDate != "" {
			req.Before, err = time.Parse(time.RFC3339, cfg.WooCommerce.EndDate)
			if err != nil {
				return nil, err
			}
		}
		return analytics.SourceFunc(func(ctx context.Context) ([]order.Order, error) {
			return adapter.PullOrders(ctx, req)
		}), nil
	}
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

func writeReport(path string, rep *report.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeExports(dir string, rep *report.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, exportType := range []string{analytics.ExportProducts, analytics.ExportStores, analytics.ExportMatrix} {
		f, err := os.Create(filepath.Join(dir, analytics.ExportFilename(exportType)))
		if err != nil {
			return err
		}
		if err := analytics.ExportCSV(f, rep, exportType); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
