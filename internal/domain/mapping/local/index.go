package local

import (
	"context"
	"slices"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping"
)

var _ mapping.Mapper = (*Index)(nil)

// Index is an immutable in-memory mapping table built from a dump.
// It is safe for concurrent use.
type Index struct {
	entries   map[key][]string
	deversion bool
}

// MapIDs looks ids up in the index. Only ids with at least one target are
// returned, keyed by the id as given.
func (x *Index) MapIDs(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(domain.Mapping)
	for _, id := range ids {
		lookup := id
		if x.deversion {
			lookup = Deversion(id)
		}

		targets := x.entries[key{from: from.Name(), id: lookup, to: to.Name()}]
		if len(targets) > 0 {
			out[id] = slices.Clone(targets)
		}
	}
	return out, nil
}

// Len returns the number of (database, identifier, target database) keys
func (x *Index) Len() int {
	return len(x.entries)
}

// Deversioned reports whether the index was built with deversioning
func (x *Index) Deversioned() bool {
	return x.deversion
}
