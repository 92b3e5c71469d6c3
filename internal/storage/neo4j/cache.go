package neo4j

import (
	"context"
	"fmt"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/idmapping/internal/repository"
	pkgneo4j "github.com/honeycarbs/idmapping/pkg/neo4j"
)

// Ensure Cache implements repository.IDCache
var _ repository.IDCache = (*Cache)(nil)

// Cache implements repository.IDCache with one CachedMapping node per id.
// Nodes are scoped by the cache name so per-pair caches can share a database.
type Cache struct {
	client *pkgneo4j.Client
	name   string
}

// NewCache creates a Cache named name with a Neo4j client
func NewCache(client *pkgneo4j.Client, name string) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("neo4j cache: client is required")
	}
	if name == "" {
		return nil, fmt.Errorf("neo4j cache: name is required")
	}
	return &Cache{client: client, name: name}, nil
}

// EnsureSchema creates the uniqueness constraint backing the cache key
func EnsureSchema(ctx context.Context, client *pkgneo4j.Client) error {
	session := client.WriteSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE CONSTRAINT cached_mapping_key IF NOT EXISTS
		FOR (m:CachedMapping) REQUIRE (m.cache, m.id) IS UNIQUE
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache constraint: %w", err)
		}
		return result.Consume(ctx)
	})
	return err
}

// Get loads the cached targets of id
func (c *Cache) Get(ctx context.Context, id string) ([]string, bool, error) {
	session := c.client.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:CachedMapping {cache: $cache, id: $id})
		RETURN m.targets AS targets
	`

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"cache": c.name, "id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to execute cache lookup query: %w", err)
		}
		if !result.Next(ctx) {
			return nil, result.Err()
		}

		raw, _ := result.Record().Get("targets")
		return toStrings(raw)
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}

	return out.([]string), true, nil
}

// Put stores targets for id. Unchanged values leave the node untouched.
func (c *Cache) Put(ctx context.Context, id string, targets []string) error {
	session := c.client.WriteSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (m:CachedMapping {cache: $cache, id: $id})
		ON CREATE SET m.createdAt = datetime()
		WITH m
		WHERE m.targets IS NULL OR m.targets <> $targets
		SET m.targets = $targets,
		    m.updatedAt = datetime()
	`

	values := slices.Clone(targets)
	if values == nil {
		values = []string{}
	}
	params := map[string]any{
		"cache":   c.name,
		"id":      id,
		"targets": values,
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("failed to execute cache write query: %w", err)
		}
		return result.Consume(ctx)
	})

	return err
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("neo4j cache: unexpected target type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("neo4j cache: unexpected targets type %T", raw)
	}
}

// CacheSizes counts cached ids per cache name
func CacheSizes(ctx context.Context, client *pkgneo4j.Client) (map[string]int64, error) {
	session := client.ReadSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:CachedMapping)
		RETURN m.cache AS cache, count(m) AS ids
		ORDER BY cache
	`

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to execute cache size query: %w", err)
		}

		sizes := make(map[string]int64)
		for result.Next(ctx) {
			record := result.Record()
			name, _, err := neo4j.GetRecordValue[string](record, "cache")
			if err != nil {
				return nil, err
			}
			ids, _, err := neo4j.GetRecordValue[int64](record, "ids")
			if err != nil {
				return nil, err
			}
			sizes[name] = ids
		}
		return sizes, result.Err()
	})
	if err != nil {
		return nil, err
	}

	return out.(map[string]int64), nil
}
