package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	predictionsTotal      *prometheus.CounterVec
	predictionErrorsTotal *prometheus.CounterVec
	predictionConfidence  *prometheus.HistogramVec
	inferenceDuration     *prometheus.HistogramVec
	uploadBytes           *prometheus.HistogramVec
	modelLoaded           prometheus.Gauge
	rateLimitedTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	predictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "predictions_total",
			Help:      "Total successful predictions by plant and severity tier.",
		},
		[]string{"service", "plant", "severity"},
	)
	predictionErrorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "prediction_errors_total",
			Help:      "Total failed predictions by error kind.",
		},
		[]string{"service", "kind"},
	)
	predictionConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "prediction_confidence",
			Help:      "Distribution of prediction confidence on the 0-100 scale.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 99},
		},
		[]string{"service"},
	)
	inferenceDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "inference_duration_seconds",
			Help:      "End-to-end preprocess and inference duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "upload_bytes",
			Help:      "Distribution of uploaded image sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"service"},
	)
	modelLoaded := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pda",
			Subsystem: "diagnosis",
			Name:      "model_loaded",
			Help:      "Whether the inference model is currently loaded (1) or not (0).",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
		[]string{"service", "path"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		predictionsTotal,
		predictionErrorsTotal,
		predictionConfidence,
		inferenceDuration,
		uploadBytes,
		modelLoaded,
		rateLimitedTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		predictionsTotal:      predictionsTotal,
		predictionErrorsTotal: predictionErrorsTotal,
		predictionConfidence:  predictionConfidence,
		inferenceDuration:     inferenceDuration,
		uploadBytes:           uploadBytes,
		modelLoaded:           modelLoaded,
		rateLimitedTotal:      rateLimitedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath folds the parameterized recommendation route so label
// cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/recommend/"):
		return "/api/recommend/{plant}/{disease}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordPrediction(service, plant, severity string, confidence float64, duration time.Duration) {
	if plant == "" {
		plant = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}
	m.predictionsTotal.WithLabelValues(service, plant, severity).Inc()
	m.predictionConfidence.WithLabelValues(service).Observe(confidence)
	m.inferenceDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordPredictionError(service, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.predictionErrorsTotal.WithLabelValues(service, kind).Inc()
}

func (m *HTTPServerMetrics) RecordUploadSize(service string, bytes int) {
	if bytes <= 0 {
		return
	}
	m.uploadBytes.WithLabelValues(service).Observe(float64(bytes))
}

func (m *HTTPServerMetrics) SetModelLoaded(loaded bool) {
	if loaded {
		m.modelLoaded.Set(1)
		return
	}
	m.modelLoaded.Set(0)
}

func (m *HTTPServerMetrics) RecordRateLimited(service, path string) {
	m.rateLimitedTotal.WithLabelValues(service, normalizePath(path)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
