// Command idmap maps identifiers between databases from the command line,
// either through the UniProt ID mapping service or a local idmapping.dat dump.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/honeycarbs/idmapping/internal/config"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/batch"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
	uniprotProvider "github.com/honeycarbs/idmapping/internal/domain/mapping/providers/uniprot"
	"github.com/honeycarbs/idmapping/internal/repository"
	"github.com/honeycarbs/idmapping/internal/storage/file"
	"github.com/honeycarbs/idmapping/internal/storage/memory"
	"github.com/honeycarbs/idmapping/pkg/idlist"
	"github.com/honeycarbs/idmapping/pkg/logging"
	"github.com/honeycarbs/idmapping/pkg/uniprot"
)

var errUsage = errors.New("usage")

type flags struct {
	from      string
	to        string
	dump      string
	cache     string
	input     string
	deversion bool
	workers   int
	batchSize int
	logLevel  string
	ids       []string
}

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "idmap: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg config.Config) (flags, error) {
	var f flags

	fs := pflag.NewFlagSet("idmap", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: idmap --from DB --to DB [--dump FILE | --cache FILE] [--input FILE] [ID...]")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.from, "from", "", "source database, e.g. UniProtKB_AC-ID")
	fs.StringVar(&f.to, "to", "", "target database, e.g. GeneID")
	fs.StringVar(&f.dump, "dump", cfg.Dump.Path, "map against a local idmapping.dat (plain, gzip or zstd)")
	fs.StringVar(&f.cache, "cache", "", "file cache for remote mapping; in-memory when empty")
	fs.StringVarP(&f.input, "input", "i", "", "read identifiers from file, one per line; - for stdin")
	fs.BoolVar(&f.deversion, "deversion", cfg.Dump.Deversion, "strip .N version suffixes from foreign identifiers")
	fs.IntVar(&f.workers, "workers", cfg.Dump.Workers, "dump parser workers; 0 uses all CPUs")
	fs.IntVar(&f.batchSize, "batch-size", cfg.UniProt.BatchSize, "identifiers per remote job")
	fs.StringVar(&f.logLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return f, errUsage
		}
		return f, err
	}

	if f.from == "" || f.to == "" {
		fs.Usage()
		return f, errUsage
	}
	// an explicit --cache selects remote mapping over the environment's dump
	if fs.Changed("cache") && !fs.Changed("dump") {
		f.dump = ""
	}
	if f.dump != "" && f.cache != "" {
		return f, fmt.Errorf("--dump and --cache are mutually exclusive")
	}
	if f.batchSize <= 0 {
		return f, fmt.Errorf("--batch-size must be positive")
	}

	f.ids = fs.Args()
	return f, nil
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	f, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}

	logger := logging.NewConsole(f.logLevel)
	defer func() { _ = logger.Sync() }()

	catalogs := endpoint.Default()
	from, to, err := catalogs.Pair(f.from, f.to)
	if err != nil {
		return err
	}

	ids, err := readIDs(f, stdin)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no identifiers given")
	}

	mapper, err := newMapper(ctx, cfg, f, catalogs, logger)
	if err != nil {
		return err
	}

	result, err := mapper.MapIDs(ctx, from, to, ids)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	unmapped := 0
	for _, id := range ids {
		targets, ok := result[id]
		if !ok {
			unmapped++
			continue
		}
		for _, target := range targets {
			fmt.Fprintf(w, "%s\t%s\n", id, target)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logger.Info("mapping done", "from", from.Name(), "to", to.Name(), "ids", len(ids), "mapped", len(ids)-unmapped, "unmapped", unmapped)
	return nil
}

func newMapper(ctx context.Context, cfg config.Config, f flags, catalogs endpoint.Catalogs, logger *logging.Logger) (mapping.Mapper, error) {
	if f.dump != "" {
		opts := []local.Option{
			local.WithCatalogs(catalogs),
			local.WithLogger(logger.Named("local")),
		}
		if f.workers > 0 {
			opts = append(opts, local.WithWorkers(f.workers))
		}
		if f.deversion {
			opts = append(opts, local.WithDeversioning())
		}

		index, stats, err := local.Open(ctx, f.dump, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("dump indexed",
			"path", f.dump,
			"lines", stats.Lines,
			"keys", stats.Keys,
			"malformed", stats.Malformed,
			"elapsed", stats.Elapsed,
		)
		return index, nil
	}

	client, err := uniprot.NewClient(uniprot.Config{
		BaseURL:      cfg.UniProt.BaseURL,
		PollInterval: cfg.UniProt.PollInterval,
		Logger:       logger.Named("uniprot"),
	})
	if err != nil {
		return nil, err
	}
	runner, err := uniprotProvider.NewProvider(client)
	if err != nil {
		return nil, err
	}

	var cache repository.IDCache = memory.NewCache()
	if f.cache != "" {
		fc, err := file.NewOSCache(f.cache, file.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		cache = fc
	}

	opts := []batch.Option{
		batch.WithRunner(runner),
		batch.WithCache(cache),
		batch.WithBatchSize(f.batchSize),
		batch.WithPause(cfg.UniProt.BatchPause),
		batch.WithLogger(logger.Named("batch")),
	}
	if cfg.UniProt.StrictStatus {
		opts = append(opts, batch.WithStrictStatus())
	}
	return batch.NewService(opts...)
}

// readIDs collects positional ids and, when asked for or when none were given, ids from input
func readIDs(f flags, stdin io.Reader) ([]string, error) {
	ids := append([]string(nil), f.ids...)

	var r io.Reader
	switch {
	case f.input == "-", f.input == "" && len(ids) == 0:
		r = stdin
	case f.input != "":
		fh, err := os.Open(f.input)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		r = fh
	}

	if r != nil {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if id := strings.TrimSpace(sc.Text()); id != "" {
				ids = append(ids, id)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	return idlist.Dedupe(ids), nil
}
