package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exposes client-side stream and transport metrics.
// The registerer is injected so tests can use isolated registries.
type PrometheusCollector struct {
	framesApplied   prometheus.Counter
	framesDiscarded *prometheus.CounterVec
	tickFailures    prometheus.Counter
	frameDelay      prometheus.Histogram
	liveHandles     prometheus.Gauge
	uploadsTotal    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		framesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "droneview_frames_applied_total",
			Help: "Frames fetched, converted and handed to the view",
		}),

		framesDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "droneview_frames_discarded_total",
			Help: "Frames dropped before display",
		}, []string{"reason"}),

		tickFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "droneview_stream_tick_failures_total",
			Help: "Poll ticks that failed at the transport level",
		}),

		frameDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "droneview_frame_delay_seconds",
			Help:    "Elapsed time since stream start when a frame is applied",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		liveHandles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "droneview_frame_handles_live",
			Help: "Unreleased displayable frame handles",
		}),

		uploadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "droneview_uploads_total",
			Help: "Image uploads accepted by the backend",
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "droneview_backend_request_duration_seconds",
			Help:    "Duration of backend requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"operation"}),
	}
}

func (p *PrometheusCollector) RecordFrameApplied(delay time.Duration) {
	p.framesApplied.Inc()
	p.frameDelay.Observe(delay.Seconds())
}

func (p *PrometheusCollector) RecordFrameDiscarded(reason string) {
	p.framesDiscarded.WithLabelValues(reason).Inc()
}

func (p *PrometheusCollector) RecordTickFailure() {
	p.tickFailures.Inc()
}

func (p *PrometheusCollector) SetLiveHandles(n int) {
	p.liveHandles.Set(float64(n))
}

func (p *PrometheusCollector) RecordUpload() {
	p.uploadsTotal.Inc()
}

func (p *PrometheusCollector) RecordRequest(operation string, duration time.Duration) {
	p.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
