// internal/platform/metrics/prometheus.go

// Package metrics expone las cuentas del descubrimiento para Prometheus.
//
// Recorder implementa ports.Recorder sobre un registry propio, sin tocar
// el registry global del proceso.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
)

var _ ports.Recorder = (*Recorder)(nil)

// Recorder agrupa los collectors de slugscout.
type Recorder struct {
	registry *prometheus.Registry

	sourceHits   *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	sourcePanics *prometheus.CounterVec
	engineSlugs  *prometheus.GaugeVec
}

// NewRecorder crea un Recorder con todos los collectors registrados.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sourceHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slugscout_source_hits_total",
				Help: "Raw slug hits returned by a source for an engine",
			},
			[]string{"engine", "source"},
		),
		sourceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slugscout_source_errors_total",
				Help: "Source calls that ended degraded",
			},
			[]string{"source"},
		),
		sourcePanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slugscout_source_panics_total",
				Help: "Source calls that panicked and were isolated",
			},
			[]string{"source"},
		),
		engineSlugs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slugscout_engine_slugs",
				Help: "Slugs per engine at each pipeline stage of the last run",
			},
			[]string{"engine", "stage"},
		),
	}

	collectors := []prometheus.Collector{
		r.sourceHits,
		r.sourceErrors,
		r.sourcePanics,
		r.engineSlugs,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "register collector")
		}
	}
	return r, nil
}

func (r *Recorder) SourceHits(engine string, source domain.ArchiveSource, n int) {
	r.sourceHits.WithLabelValues(engine, source.String()).Add(float64(n))
}

func (r *Recorder) SourceError(source domain.ArchiveSource) {
	r.sourceErrors.WithLabelValues(source.String()).Inc()
}

func (r *Recorder) SourcePanic(source domain.ArchiveSource) {
	r.sourcePanics.WithLabelValues(source.String()).Inc()
}

func (r *Recorder) EngineSlugs(engine string, stage ports.Stage, n int) {
	r.engineSlugs.WithLabelValues(engine, string(stage)).Set(float64(n))
}

// Registry retorna el registry del recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler sirve el registry en el formato de exposición de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve expone /metrics en addr hasta que ctx termine.
func (r *Recorder) Serve(ctx context.Context, addr string, logger logx.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("metrics server listening", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrapf(err, "metrics server on %s", addr)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
