package local

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

const maxLineSize = 1024 * 1024

// Stats summarises one build
type Stats struct {
	Lines      int64
	Malformed  int64
	Unresolved int64
	Keys       int
	Elapsed    time.Duration
}

type line struct {
	no   int64
	text string
}

type builder struct {
	catalogs  endpoint.Catalogs
	accession string
	uniprotKB string
	deversion bool
	store     *store
	logger    *logging.Logger

	malformed  atomic.Int64
	unresolved atomic.Int64
}

// Build reads an idmapping dump of "accession<TAB>database<TAB>identifier" lines
// and returns the frozen index. Lines are parsed concurrently; the index is only
// returned once every line has been inserted.
func Build(ctx context.Context, r io.Reader, opts ...Option) (*Index, Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	accession, err := o.catalogs.Sources.Parse(endpoint.UniProtAccession)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("local: source catalog: %w", err)
	}
	uniprotKB, err := o.catalogs.Targets.Parse(endpoint.UniProtKB)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("local: target catalog: %w", err)
	}

	b := &builder{
		catalogs:  o.catalogs,
		accession: accession.Name(),
		uniprotKB: uniprotKB.Name(),
		deversion: o.deversion,
		store:     newStore(),
		logger:    o.logger,
	}

	start := time.Now()
	var lines int64

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan line, o.workers*512)

	g.Go(func() error {
		defer close(queue)

		br := bufio.NewReaderSize(r, 64*1024)
		var (
			no  int64
			buf []byte
		)
		for {
			text, tooLong, err := readLine(br, buf[:0], maxLineSize)
			buf = text
			if err != nil && err != io.EOF {
				return fmt.Errorf("local: read dump at line %d: %w", no+1, err)
			}
			if err == io.EOF && len(text) == 0 && !tooLong {
				break
			}

			no++
			if tooLong {
				b.malformed.Add(1)
				b.logger.Warn("ignoring overlong dump line", "line", no, "limit", maxLineSize)
			} else {
				select {
				case queue <- line{no: no, text: string(text)}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			if err == io.EOF {
				break
			}
		}
		lines = no
		return nil
	})

	for range o.workers {
		g.Go(func() error {
			for l := range queue {
				b.insert(l)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	idx := &Index{entries: b.store.freeze(), deversion: o.deversion}
	stats := Stats{
		Lines:      lines,
		Malformed:  b.malformed.Load(),
		Unresolved: b.unresolved.Load(),
		Keys:       len(idx.entries),
		Elapsed:    time.Since(start),
	}

	o.logger.Info("local index built",
		"lines", stats.Lines,
		"keys", stats.Keys,
		"malformed", stats.Malformed,
		"unresolved", stats.Unresolved,
		"workers", o.workers,
		"elapsed", stats.Elapsed,
	)

	return idx, stats, nil
}

func (b *builder) insert(l line) {
	text := strings.TrimRight(l.text, "\r")
	if text == "" {
		return
	}

	fields := strings.Split(text, "\t")
	if len(fields) != 3 {
		b.malformed.Add(1)
		b.logger.Warn("ignoring malformed dump line", "line", l.no, "fields", len(fields))
		return
	}
	canonical, db, foreign := fields[0], fields[1], fields[2]

	to, forward := b.catalogs.Targets.Resolve(db)
	if forward {
		b.store.add(key{from: b.accession, id: canonical, to: to.Name()}, l.no, foreign)
	}

	from, reverse := b.catalogs.Sources.Resolve(db)
	if reverse {
		id := foreign
		if b.deversion {
			id = Deversion(foreign)
		}
		b.store.add(key{from: from.Name(), id: id, to: b.uniprotKB}, l.no, canonical)
	}

	if !forward && !reverse {
		b.unresolved.Add(1)
		b.logger.Debug("unknown database in dump", "line", l.no, "database", db)
	}
}

// readLine reads one line into buf without its newline. A line longer than
// limit is consumed and reported as tooLong with no text.
func readLine(br *bufio.Reader, buf []byte, limit int) ([]byte, bool, error) {
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			n := len(chunk)
			if n > 0 && chunk[n-1] == '\n' {
				n--
			}
			if len(buf)+n > limit {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if n := len(buf); n > 0 && buf[n-1] == '\n' {
			buf = buf[:n-1]
		}
		return buf, tooLong, err
	}
}

// Deversion strips a trailing ".N" version suffix made of digits
func Deversion(id string) string {
	dot := strings.LastIndexByte(id, '.')
	if dot <= 0 || dot == len(id)-1 {
		return id
	}
	for _, r := range id[dot+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:dot]
}
