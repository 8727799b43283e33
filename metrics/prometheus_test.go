package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mclaunch/models"
)

func TestPrometheusCollector(t *testing.T) {
	pc := NewPrometheusCollector("test")

	pc.ArtifactFetched(100, nil)
	pc.ArtifactFetched(20, nil)
	pc.ArtifactFetched(0, fmt.Errorf("get: %w", models.ErrNetwork))
	pc.MirrorFailover("https://a.example")
	pc.InstallFinished(2*time.Second, nil)
	pc.GameExited(0)
	pc.GameExited(1)
	pc.GameExited(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(pc.fetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.fetches.WithLabelValues("network")))
	assert.Equal(t, 120.0, testutil.ToFloat64(pc.fetchedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.failovers.WithLabelValues("https://a.example")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pc.gameExits.WithLabelValues("1")))
}

func TestWriteTextfile(t *testing.T) {
	pc := NewPrometheusCollector("")
	pc.GameExited(3)

	path := filepath.Join(t.TempDir(), "mclaunch.prom")
	require.NoError(t, pc.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mclaunch_game_exits_total{code="3"} 1`)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "cancelled", Outcome(models.ErrCancelled))
	assert.Equal(t, "incomplete", Outcome(fmt.Errorf("x: %w", models.ErrIncomplete)))
	assert.Equal(t, "checksum", Outcome(models.ErrSumsMismatch))
	assert.Equal(t, "error", Outcome(models.ErrNotInstalled))
}
