package observability

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics of the editor
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	Commands        *prometheus.CounterVec
	HistoryCommits  prometheus.Counter
	HistoryDepth    prometheus.Gauge
	HistoryMoves    *prometheus.CounterVec
	ModeActivations *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of editing commands executed",
		},
		[]string{"command", "status"},
	)

	historyCommits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_commits_total",
			Help:      "Total number of history entries recorded",
		},
	)

	historyDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Number of entries currently held by the history",
		},
	)

	historyMoves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_navigation_total",
			Help:      "Undo and redo requests by outcome",
		},
		[]string{"direction", "result"},
	)

	modeActivations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mode_activations_total",
			Help:      "Relationship mode activations",
		},
		[]string{"mode"},
	)

	registry.MustRegister(commands, historyCommits, historyDepth, historyMoves, modeActivations)

	return &Collector{
		registry:        registry,
		Commands:        commands,
		HistoryCommits:  historyCommits,
		HistoryDepth:    historyDepth,
		HistoryMoves:    historyMoves,
		ModeActivations: modeActivations,
	}
}

// Registry exposes the registry for gathering
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCommand counts one command outcome.
func (c *Collector) ObserveCommand(name string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.Commands.WithLabelValues(name, status).Inc()
}

// HistoryCommitted records a commit and the resulting depth.
func (c *Collector) HistoryCommitted(depth int) {
	c.HistoryCommits.Inc()
	c.HistoryDepth.Set(float64(depth))
}

// HistoryNavigated counts an undo or redo request.
func (c *Collector) HistoryNavigated(direction string, moved bool) {
	result := "moved"
	if !moved {
		result = "noop"
	}
	c.HistoryMoves.WithLabelValues(direction, result).Inc()
}

// ModeActivated counts a relationship mode activation.
func (c *Collector) ModeActivated(mode ports.ModeKind) {
	c.ModeActivations.WithLabelValues(string(mode)).Inc()
}

// WriteTextfile dumps the current values in the text exposition format,
// for a node exporter textfile directory.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
