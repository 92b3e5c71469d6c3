package mcp

import (
	"context"

	"github.com/honeycarbs/idmapping/internal/config"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

func initializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	res, cleanup, err := InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		return nil, nil, err
	}

	logger.Info("mapping resources initialized",
		"uniprot", cfg.UniProt.BaseURL,
		"cache_backend", cfg.Cache.Backend,
		"local_index", res.Local != nil,
	)
	if res.Local != nil {
		logger.Info("local index ready", "path", cfg.Dump.Path, "keys", res.Local.Len(), "deversioned", res.Local.Deversioned())
	}

	return res, cleanup, nil
}
