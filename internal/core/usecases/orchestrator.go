// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
)

// EngineOrchestrator ejecuta los conectores habilitados contra un engine y
// concatena sus hits en orden canónico de fuentes.
type EngineOrchestrator struct {
	connectors    []ports.Connector
	logger        logx.Logger
	recorder      ports.Recorder
	sourceWorkers int
}

// EngineOrchestratorOptions configura el orchestrator.
type EngineOrchestratorOptions struct {
	Connectors []ports.Connector
	Logger     logx.Logger
	Recorder   ports.Recorder

	// SourceWorkers > 1 ejecuta conectores en paralelo. El resultado es idéntico
	// al secuencial porque se concatena en orden canónico.
	SourceWorkers int
}

// NewEngineOrchestrator crea una nueva instancia del orchestrator.
func NewEngineOrchestrator(opts EngineOrchestratorOptions) *EngineOrchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.NewSilent()
	}
	if opts.Recorder == nil {
		opts.Recorder = ports.NopRecorder{}
	}
	if opts.SourceWorkers <= 0 {
		opts.SourceWorkers = 1
	}

	connectors := make([]ports.Connector, 0, len(opts.Connectors))
	for _, c := range opts.Connectors {
		if c != nil {
			connectors = append(connectors, c)
		}
	}
	sort.SliceStable(connectors, func(i, j int) bool {
		return connectors[i].Name().Order() < connectors[j].Name().Order()
	})

	return &EngineOrchestrator{
		connectors:    connectors,
		logger:        opts.Logger.With("component", "orchestrator"),
		recorder:      opts.Recorder,
		sourceWorkers: opts.SourceWorkers,
	}
}

// Available retorna las fuentes con conector construido.
func (o *EngineOrchestrator) Available() domain.SourceSet {
	set := domain.NewSourceSet()
	for _, c := range o.connectors {
		set[c.Name()] = true
	}
	return set
}

// Run consulta cada conector habilitado y retorna los hits crudos junto con
// la cuenta por fuente. Un conector que falla o entra en pánico no aborta el engine.
func (o *EngineOrchestrator) Run(ctx context.Context, pattern domain.EnginePattern, enabled domain.SourceSet) ([]domain.DiscoveredSlug, map[domain.ArchiveSource]int) {
	selected := o.selectConnectors(enabled)
	perSource := make(map[domain.ArchiveSource]int, len(selected))
	if len(selected) == 0 {
		o.logger.Warn("no connectors enabled", "engine", pattern.Name(), "requested", enabled.Names())
		return nil, perSource
	}

	results := make([][]domain.DiscoveredSlug, len(selected))

	if o.sourceWorkers <= 1 || len(selected) == 1 {
		for i, c := range selected {
			if ctx.Err() != nil {
				break
			}
			results[i] = o.executeConnector(ctx, c, pattern)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.sourceWorkers)
		for i, c := range selected {
			g.Go(func() error {
				results[i] = o.executeConnector(ctx, c, pattern)
				return nil
			})
		}
		_ = g.Wait()
	}

	var all []domain.DiscoveredSlug
	for i, c := range selected {
		perSource[c.Name()] = len(results[i])
		all = append(all, results[i]...)
	}
	return all, perSource
}

// Close cierra todos los conectores.
func (o *EngineOrchestrator) Close() error {
	var errs []error
	for _, c := range o.connectors {
		if err := c.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "close %s", c.Name()))
		}
	}
	return errors.Join(errs...)
}

func (o *EngineOrchestrator) selectConnectors(enabled domain.SourceSet) []ports.Connector {
	selected := make([]ports.Connector, 0, len(o.connectors))
	for _, c := range o.connectors {
		if enabled.Enabled(c.Name()) {
			selected = append(selected, c)
		}
	}
	available := o.Available()
	for _, src := range enabled.Ordered() {
		if !available.Enabled(src) {
			o.logger.Debug("source enabled but no connector built", "source", src.String())
		}
	}
	return selected
}

// executeConnector ejecuta un conector aislando errores y pánicos.
func (o *EngineOrchestrator) executeConnector(ctx context.Context, c ports.Connector, pattern domain.EnginePattern) (hits []domain.DiscoveredSlug) {
	source := c.Name()
	logger := o.logger.With("source", source.String(), "engine", pattern.Name())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Err(fmt.Errorf("connector panic: %v", r), "hits_kept", 0)
			o.recorder.SourcePanic(source)
			hits = nil
		}
	}()

	logger.Debug("executing connector")
	hits, err := c.Fetch(ctx, pattern)
	if err != nil {
		logger.Warn("connector degraded", "error", err.Error(), "hits_kept", len(hits))
		o.recorder.SourceError(source)
	}

	logger.Info("connector completed", "hits", len(hits), "duration_ms", time.Since(start).Milliseconds())
	o.recorder.SourceHits(pattern.Name(), source, len(hits))
	return hits
}
