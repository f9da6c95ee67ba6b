package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tallerhub/docpipe/internal/catalog"
	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/export"
	"github.com/tallerhub/docpipe/internal/pipeline"
	"github.com/tallerhub/docpipe/internal/provider"
)

// deps holds the wired application components commands work with.
type deps struct {
	cfg       *common.Config
	logger    *slog.Logger
	catalog   *catalog.Cache
	extractor *pipeline.Extractor
	exporter  *export.Service

	closeFns []func()
}

func (d *deps) close() {
	for i := len(d.closeFns) - 1; i >= 0; i-- {
		d.closeFns[i]()
	}
}

// withDeps loads config, wires the pipeline, runs fn, and cleans up.
func withDeps(ctx context.Context, fn func(*deps) error) error {
	cfg := common.LoadConfig()
	if globalConf != "" {
		if err := common.LoadConfigFile(cfg, globalConf); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	d := &deps{cfg: cfg, logger: logger}

	var source catalog.Source
	switch cfg.Catalog.Driver {
	case "sqlite":
		sq, err := catalog.OpenSQLite(cfg.Catalog.Path, logger)
		if err != nil {
			return err
		}
		d.closeFns = append(d.closeFns, func() { _ = sq.Close() })
		source = sq
	default:
		pg, err := catalog.OpenPostgres(ctx, cfg.Catalog, logger)
		if err != nil {
			return err
		}
		d.closeFns = append(d.closeFns, pg.Close)
		source = pg
	}

	d.catalog = catalog.NewCache(source, cfg.Catalog.SnapshotTTL, cfg.Catalog.ProductLimit, logger)

	resolver := provider.NewResolver(cfg.Provider)
	gateway := provider.NewGateway(resolver, logger)

	d.extractor = pipeline.NewExtractor(gateway, d.catalog, pipeline.BusinessContext{
		Name:            cfg.Business.Name,
		DefaultCurrency: cfg.Business.Currency,
		Timezone:        cfg.Business.Timezone,
	}, logger)
	d.exporter = export.NewService(logger)

	defer d.close()
	return fn(d)
}
