package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector with Prometheus metrics kept in
// a private registry.
type PrometheusCollector struct {
	fetches         *prometheus.CounterVec
	fetchedBytes    prometheus.Counter
	failovers       *prometheus.CounterVec
	installDuration *prometheus.HistogramVec
	gameExits       *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "mclaunch"
	}

	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
	}

	pc.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_fetches_total",
			Help:      "Total number of artifact transfers by outcome",
		},
		[]string{"outcome"},
	)

	pc.fetchedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_fetched_bytes_total",
			Help:      "Total number of bytes written by artifact transfers",
		},
	)

	pc.failovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_failovers_total",
			Help:      "Total number of switches away from a failing mirror",
		},
		[]string{"mirror"},
	)

	pc.installDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "install_duration_seconds",
			Help:      "Duration of version installs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)

	pc.gameExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_exits_total",
			Help:      "Total number of supervised game exits by exit code",
		},
		[]string{"code"},
	)

	pc.registry.MustRegister(
		pc.fetches,
		pc.fetchedBytes,
		pc.failovers,
		pc.installDuration,
		pc.gameExits,
	)

	return pc
}

func (pc *PrometheusCollector) ArtifactFetched(bytes int64, err error) {
	pc.fetches.WithLabelValues(Outcome(err)).Inc()
	if bytes > 0 {
		pc.fetchedBytes.Add(float64(bytes))
	}
}

func (pc *PrometheusCollector) MirrorFailover(mirror string) {
	pc.failovers.WithLabelValues(mirror).Inc()
}

func (pc *PrometheusCollector) InstallFinished(d time.Duration, err error) {
	pc.installDuration.WithLabelValues(Outcome(err)).Observe(d.Seconds())
}

func (pc *PrometheusCollector) GameExited(code int) {
	pc.gameExits.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Registry returns the registry holding the collector's metrics.
func (pc *PrometheusCollector) Registry() *prometheus.Registry {
	return pc.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (pc *PrometheusCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, pc.registry)
}
