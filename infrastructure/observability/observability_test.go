package observability

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "famtree.log")

	logger, err := NewLogger(config.LoggingConfig{
		Level:     "info",
		Format:    "json",
		Name:      "famtree",
		File:      file,
		MaxSizeMB: 1,
	}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"logger":"famtree"`)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shown")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestCollector(t *testing.T) {
	c := NewCollector("famtree")

	c.ObserveCommand("UpdatePersonCommand", nil)
	c.ObserveCommand("UpdatePersonCommand", errors.New("boom"))
	c.HistoryCommitted(3)
	c.HistoryNavigated("undo", true)
	c.HistoryNavigated("undo", false)
	c.ModeActivated(ports.ModeAddRelative)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("UpdatePersonCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("UpdatePersonCommand", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HistoryCommits))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.HistoryDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HistoryMoves.WithLabelValues("undo", "noop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModeActivations.WithLabelValues("add_relative")))
	n, err := testutil.GatherAndCount(c.Registry(), "famtree_history_navigation_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	path := filepath.Join(t.TempDir(), "famtree.prom")
	require.NoError(t, c.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "famtree_history_depth 3")
}
