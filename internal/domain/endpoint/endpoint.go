package endpoint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned when a name does not resolve to any endpoint of a catalog
var ErrUnknown = errors.New("endpoint: unknown database")

// Endpoint is a named identifier namespace such as "GeneID" or "FlyBase".
// Endpoints are comparable and safe to use as map keys.
type Endpoint struct {
	name string
}

// Name returns the canonical display name
func (e Endpoint) Name() string {
	return e.name
}

func (e Endpoint) String() string {
	return e.name
}

// IsZero reports whether e is the zero value
func (e Endpoint) IsZero() bool {
	return e.name == ""
}

// Catalog resolves alias spellings to endpoints. It is immutable once built.
type Catalog struct {
	endpoints []Endpoint
	lookup    map[string]Endpoint
}

// NewCatalog builds a catalog from canonical names and an alias -> canonical name table.
// Names are matched case-insensitively with space, dash and underscore treated alike;
// aliases take precedence over canonical names.
func NewCatalog(names []string, aliases map[string]string) (*Catalog, error) {
	c := &Catalog{
		endpoints: make([]Endpoint, 0, len(names)),
		lookup:    make(map[string]Endpoint, len(names)+len(aliases)),
	}

	byName := make(map[string]Endpoint, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("endpoint: empty canonical name")
		}
		if _, ok := byName[name]; ok {
			return nil, fmt.Errorf("endpoint: duplicate canonical name %q", name)
		}

		e := Endpoint{name: name}
		key := foldName(name)
		if prev, ok := c.lookup[key]; ok {
			return nil, fmt.Errorf("endpoint: %q and %q are indistinguishable", prev.name, name)
		}

		byName[name] = e
		c.lookup[key] = e
		c.endpoints = append(c.endpoints, e)
	}

	for alias, target := range aliases {
		e, ok := byName[target]
		if !ok {
			return nil, fmt.Errorf("endpoint: alias %q points to unknown name %q", alias, target)
		}
		c.lookup[foldName(alias)] = e
	}

	return c, nil
}

// Resolve maps a name or alias to its endpoint
func (c *Catalog) Resolve(name string) (Endpoint, bool) {
	e, ok := c.lookup[foldName(name)]
	return e, ok
}

// Parse is Resolve returning ErrUnknown for unresolved names
func (c *Catalog) Parse(name string) (Endpoint, error) {
	e, ok := c.Resolve(name)
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return e, nil
}

// Endpoints lists the catalog in declaration order
func (c *Catalog) Endpoints() []Endpoint {
	return append([]Endpoint(nil), c.endpoints...)
}

func foldName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-':
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
