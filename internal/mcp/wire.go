//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/idmapping/internal/config"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/batch"
	uniprotProvider "github.com/honeycarbs/idmapping/internal/domain/mapping/providers/uniprot"
	"github.com/honeycarbs/idmapping/pkg/logging"
	"github.com/honeycarbs/idmapping/pkg/uniprot"
)

// InitializeResources creates Resources with all resources wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Catalogs
		endpoint.Default,

		// Infrastructure - UniProt
		provideUniProtConfig,
		uniprot.NewClient,

		// Infrastructure - Neo4j
		provideNeo4jClient,

		// Providers
		provideJobRunner,
		wire.Bind(new(batch.JobRunner), new(*uniprotProvider.Provider)),

		// Services
		provideCacheFactory,
		provideBatchOptions,
		provideRegistry,
		provideLocalIndex,

		// Tool resources
		provideSheetsClient,
		provideCacheInspector,
		newResources,
	)

	return nil, nil, nil
}
