package metrics

import (
	"errors"
	"time"

	"github.com/tie/mclaunch/models"
)

// Collector records launcher pipeline metrics.
type Collector interface {
	// ArtifactFetched records one finished artifact transfer.
	ArtifactFetched(bytes int64, err error)

	// MirrorFailover records a switch away from a failing mirror.
	MirrorFailover(mirror string)

	// InstallFinished records the duration and outcome of an install.
	InstallFinished(d time.Duration, err error)

	// GameExited records the exit code of a supervised game process.
	GameExited(code int)
}

type noopCollector struct{}

func (noopCollector) ArtifactFetched(bytes int64, err error)     {}
func (noopCollector) MirrorFailover(mirror string)               {}
func (noopCollector) InstallFinished(d time.Duration, err error) {}
func (noopCollector) GameExited(code int)                        {}

// Noop returns a collector that drops everything.
func Noop() Collector {
	return noopCollector{}
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrCancelled):
		return "cancelled"
	case errors.Is(err, models.ErrIncomplete):
		return "incomplete"
	case errors.Is(err, models.ErrSumsMismatch):
		return "checksum"
	case errors.Is(err, models.ErrNetwork):
		return "network"
	}
	return "error"
}
