package mapping

import (
	"context"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
)

// Mapper resolves identifiers from one endpoint to another.
// The returned mapping only contains identifiers that have at least one target.
type Mapper interface {
	MapIDs(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Mapping, error)
}
