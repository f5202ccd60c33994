package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/versioned-ring/internal/config"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestParseArgs_BackoffsAreSeparate(t *testing.T) {
	cfg, err := parseArgs([]string{"-producer-backoff", "spin"})
	require.NoError(t, err)
	require.Equal(t, "spin", cfg.Producer.Backoff)
	require.Equal(t, config.Default().Consumer.Backoff, cfg.Consumer.Backoff)

	cfg, err = parseArgs([]string{"-backoff", "sleep"})
	require.NoError(t, err)
	require.Equal(t, "sleep", cfg.Consumer.Backoff)
	require.Equal(t, config.Default().Producer.Backoff, cfg.Producer.Backoff)
}

func TestParseArgs_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items: 500
producer:
  backoff: sleep
consumer:
  ticker: std
  report_every: 2s
`), 0o600))

	cfg, err := parseArgs([]string{"-config", path, "-n", "7", "-ticker", "batch"})
	require.NoError(t, err)
	require.Equal(t, uint64(7), cfg.Items)
	require.Equal(t, "batch", cfg.Consumer.Ticker)
	require.Equal(t, "sleep", cfg.Producer.Backoff, "unset flag keeps the file value")
	require.Equal(t, 2*time.Second, cfg.Consumer.ReportEvery)
}

func TestParseArgs_BadFlag(t *testing.T) {
	_, err := parseArgs([]string{"-no-such-flag"})
	require.Error(t, err)
}
