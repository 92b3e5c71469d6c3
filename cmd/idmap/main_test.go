package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/idmapping/internal/config"
)

const flyDump = "../../internal/domain/mapping/local/testdata/DROME_7227_idmapping_subset.dat"

func testConfig() config.Config {
	var cfg config.Config
	cfg.LogLevel = "error"
	cfg.UniProt.BatchSize = 100
	return cfg
}

func TestRunAgainstDump(t *testing.T) {
	var out bytes.Buffer
	args := []string{"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump, "FBgn0010340", "FBgn9999999"}

	require.NoError(t, run(context.Background(), testConfig(), args, strings.NewReader(""), &out))
	assert.Equal(t, "FBgn0010340\tP81928\nFBgn0010340\tA0A0B4KFZ0\n", out.String())
}

func TestRunReadsIDsFromInput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(input, []byte("FBgn0010340\n\n  FBgn0010340  \n"), 0o644))

	var out bytes.Buffer
	args := []string{"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump, "-i", input}

	require.NoError(t, run(context.Background(), testConfig(), args, strings.NewReader(""), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestRunReadsStdinWithoutArgs(t *testing.T) {
	var out bytes.Buffer
	args := []string{"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump}

	require.NoError(t, run(context.Background(), testConfig(), args, strings.NewReader("FBgn0010340\n"), &out))
	assert.Contains(t, out.String(), "FBgn0010340\tP81928\n")
}

func TestRunRejectsBadInvocations(t *testing.T) {
	cases := map[string][]string{
		"missing to":     {"--from", "FlyBase", "X"},
		"unknown source": {"--from", "Nope", "--to", "UniProtKB", "--dump", flyDump, "X"},
		"dump and cache": {"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump, "--cache", "c", "X"},
		"bad batch size": {"--from", "FlyBase", "--to", "UniProtKB", "--batch-size", "0", "X"},
		"no ids":         {"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			err := run(context.Background(), testConfig(), args, strings.NewReader(""), &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestExplicitCacheOverridesDumpFromEnvironment(t *testing.T) {
	cfg := testConfig()
	cfg.Dump.Path = flyDump

	f, err := parseFlags([]string{"--from", "FlyBase", "--to", "UniProtKB", "--cache", "ids.cache", "X"}, cfg)
	require.NoError(t, err)
	assert.Empty(t, f.dump)
	assert.Equal(t, "ids.cache", f.cache)

	f, err = parseFlags([]string{"--from", "FlyBase", "--to", "UniProtKB", "X"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, flyDump, f.dump)

	_, err = parseFlags([]string{"--from", "FlyBase", "--to", "UniProtKB", "--dump", flyDump, "--cache", "ids.cache", "X"}, cfg)
	assert.Error(t, err)
}
