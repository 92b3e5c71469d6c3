package local

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open builds an index from the dump at path. Gzip and zstd compressed dumps
// are detected from their leading bytes.
func Open(ctx context.Context, path string, opts ...Option) (*Index, Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	f, err := o.fs.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("local: open dump: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r, closeFn, err := decompress(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("local: %s: %w", path, err)
	}
	defer closeFn()

	o.logger.Info("loading dump", "path", path)
	return Build(ctx, r, opts...)
}

func decompress(br *bufio.Reader) (io.Reader, func(), error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, fmt.Errorf("peek header: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip header: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd header: %w", err)
		}
		return zr, zr.Close, nil

	default:
		return br, func() {}, nil
	}
}
