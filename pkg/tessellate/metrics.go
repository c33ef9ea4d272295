package tessellate

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	backendLabel = "backend"
	errTypeLabel = "error_type"
)

var (
	tessellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "isomesh_tessellations",
		Help: "The number of completed tessellations.",
	}, []string{
		backendLabel,
	})

	tessellationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "isomesh_tessellation_errors",
		Help: "The errors that occurred while tessellating a field.",
	}, []string{
		backendLabel,
		errTypeLabel,
	})

	tessellationVertices = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "isomesh_vertices",
		Help:    "The number of vertices produced by a tessellation.",
		Buckets: prometheus.ExponentialBuckets(48, 4, 10),
	}, []string{
		backendLabel,
	})

	tessellationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "isomesh_tessellation_seconds",
		Help: "The time to tessellate a field.",
	}, []string{
		backendLabel,
	})
)

func instrumentTessellation(backend string, vertices int, start time.Time) {
	labels := prometheus.Labels{
		backendLabel: backend,
	}
	tessellations.With(labels).Inc()
	tessellationVertices.With(labels).Observe(float64(vertices))
	tessellationLatency.With(labels).Observe(time.Since(start).Seconds())
}

func instrumentTessellationError(backend string, err error) {
	tessellationErrors.
		With(prometheus.Labels{
			backendLabel: backend,
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}
