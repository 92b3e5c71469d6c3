package local

import (
	"runtime"

	"github.com/spf13/afero"

	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

// Option configures index construction
type Option func(*options)

type options struct {
	workers   int
	catalogs  endpoint.Catalogs
	deversion bool
	fs        afero.Fs
	logger    *logging.Logger
}

func defaultOptions() *options {
	return &options{
		workers:  runtime.NumCPU(),
		catalogs: endpoint.Default(),
		fs:       afero.NewOsFs(),
		logger:   logging.NewNop(),
	}
}

// WithWorkers sets the number of line parsers. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithCatalogs sets the catalogs used to resolve the database column
func WithCatalogs(c endpoint.Catalogs) Option {
	return func(o *options) {
		if c.Sources != nil && c.Targets != nil {
			o.catalogs = c
		}
	}
}

// WithDeversioning drops a trailing ".N" version from foreign identifiers when
// indexing them and from query identifiers when looking them up
func WithDeversioning() Option {
	return func(o *options) {
		o.deversion = true
	}
}

// WithFs sets the filesystem Open reads dumps from
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
