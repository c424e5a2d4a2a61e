package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"docscan/internal/scanner"
)

const (
	resultSuccess   = "success"
	resultSkipped   = "skipped"
	resultCancelled = "cancelled"
	resultFailure   = "failure"
)

// Metrics holds the coordinator's prometheus collectors.
type Metrics struct {
	saves   *prometheus.CounterVec
	scans   *prometheus.CounterVec
	tracked prometheus.Gauge
}

// NewMetrics creates the coordinator metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_saved_total",
				Help: "Save attempts by result.",
			},
			[]string{"result"},
		),
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_scans_total",
				Help: "Scan attempts by result.",
			},
			[]string{"result"},
		),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "documents_tracked",
			Help: "Documents in the latest snapshot.",
		}),
	}

	for _, c := range []prometheus.Collector{m.saves, m.scans, m.tracked} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSave(err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrNoPendingScan), errors.Is(err, ErrDestinationNotChosen):
		result = resultSkipped
	default:
		result = resultFailure
	}
	m.saves.WithLabelValues(result).Inc()
}

func (m *Metrics) observeScan(err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	switch {
	case err == nil:
	case errors.Is(err, scanner.ErrCancelled):
		result = resultCancelled
	default:
		result = resultFailure
	}
	m.scans.WithLabelValues(result).Inc()
}

func (m *Metrics) setTracked(n int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(n))
}
