package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ticket-journeys/internal/config"
	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

func TestApplyFlags(t *testing.T) {
	cmd := rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--journeys=5", "--sinks=stdout,sqlite", "--seed=9"}))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, applyFlags(cmd, &cfg))
	assert.Equal(t, 5, cfg.Journeys)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(9), *cfg.Seed)
	assert.Equal(t, []string{"stdout", "sqlite"}, cfg.Sinks)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestZeroSeedIsReproducible(t *testing.T) {
	cmd := rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--seed=0"}))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, applyFlags(cmd, &cfg))

	seed, err := pickSeed(cfg.Seed)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seed)
}

func TestRunWritesFileAndMetrics(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "debugging.log")
	metricsPath := filepath.Join(dir, "journeys.prom")
	t.Setenv("JOURNEYSIM_FILE_PATH", logPath)
	t.Setenv("JOURNEYSIM_SQLITE_PATH", filepath.Join(dir, "records.db"))
	t.Setenv("JOURNEYSIM_METRICS_FILE", metricsPath)

	cmd := rootCmd()
	cmd.SetArgs([]string{"--journeys=20", "--seed=11", "--flush-delay=0s", "--sinks=file,sqlite", "--log-level=error"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()
	var n int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var r journey.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		assert.NotEmpty(t, r.CorrelationID)
		n++
	}
	require.NoError(t, sc.Err())
	assert.Greater(t, n, 20)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "journeysim_journeys_total")
	assert.Contains(t, string(metrics), "journeysim_records_total")
}

func TestRunRejectsUnknownSink(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"--sinks=kafka", "--log-level=error"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
