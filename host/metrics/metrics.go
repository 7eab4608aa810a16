// Package metrics exposes command counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uniled/core"
	"uniled/host/logging"
	"uniled/protocol"
)

// Result labels
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultOverflow = "overflow"
	ResultError    = "error"
)

// Metrics holds the host-side collectors on a private registry
type Metrics struct {
	registry  *prometheus.Registry
	responses *prometheus.CounterVec
	latency   prometheus.Histogram
}

// New creates the collectors and registers them
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uniled_client_responses_total",
				Help: "Responses received from the board, by result",
			},
			[]string{"result"},
		),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uniled_client_response_seconds",
			Help:    "Time from writing a command to reading its response",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	m.registry.MustRegister(m.responses, m.latency)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSend records the outcome of one client Send
func (m *Metrics) ObserveSend(resp protocol.Response, err error, took time.Duration) {
	switch {
	case err == nil:
		m.responses.WithLabelValues(ResultAccepted).Inc()
	case errors.Is(err, protocol.ErrBufferOverflow):
		m.responses.WithLabelValues(ResultOverflow).Inc()
	case resp.Reason != "":
		m.responses.WithLabelValues(ResultRejected).Inc()
	default:
		m.responses.WithLabelValues(ResultError).Inc()
		return
	}
	m.latency.Observe(took.Seconds())
}

// HandlerStats is satisfied by *core.Handler
type HandlerStats interface {
	Stats() core.Stats
}

// RegisterHandler exports the firmware handler counters
func (m *Metrics) RegisterHandler(h HandlerStats) {
	m.registry.MustRegister(&handlerCollector{
		handler: h,
		lines: prometheus.NewDesc(
			"uniled_handler_lines_total",
			"Command lines handled by the firmware loop, by result",
			[]string{"result"}, nil,
		),
		ioErrors: prometheus.NewDesc(
			"uniled_handler_io_errors_total",
			"Transport read and write failures",
			[]string{"direction"}, nil,
		),
	})
}

// handlerCollector reads the counters at scrape time
type handlerCollector struct {
	handler  HandlerStats
	lines    *prometheus.Desc
	ioErrors *prometheus.Desc
}

func (c *handlerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lines
	ch <- c.ioErrors
}

func (c *handlerCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.handler.Stats()
	ch <- prometheus.MustNewConstMetric(c.lines, prometheus.CounterValue, float64(st.Accepted), ResultAccepted)
	ch <- prometheus.MustNewConstMetric(c.lines, prometheus.CounterValue, float64(st.Rejected), ResultRejected)
	ch <- prometheus.MustNewConstMetric(c.lines, prometheus.CounterValue, float64(st.Overflows), ResultOverflow)
	ch <- prometheus.MustNewConstMetric(c.ioErrors, prometheus.CounterValue, float64(st.ReadErrors), "read")
	ch <- prometheus.MustNewConstMetric(c.ioErrors, prometheus.CounterValue, float64(st.WriteErrors), "write")
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve serves /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	logger := logging.GetLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Sender is satisfied by *client.Client
type Sender interface {
	Send(ctx context.Context, line string) (protocol.Response, error)
}

// Instrument returns a Sender that records every Send on m
func (m *Metrics) Instrument(s Sender) Sender {
	return &instrumented{next: s, m: m}
}

type instrumented struct {
	next Sender
	m    *Metrics
}

func (i *instrumented) Send(ctx context.Context, line string) (protocol.Response, error) {
	start := time.Now()
	resp, err := i.next.Send(ctx, line)
	i.m.ObserveSend(resp, err, time.Since(start))
	return resp, err
}
