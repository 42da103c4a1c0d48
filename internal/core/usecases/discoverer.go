// internal/core/usecases/discoverer.go
package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
)

// Discoverer es el punto de entrada del descubrimiento: un engine o todo el registro.
type Discoverer struct {
	catalog       ports.PatternCatalog
	orchestrator  *EngineOrchestrator
	dedupe        *DedupeService
	recorder      ports.Recorder
	logger        logx.Logger
	engineWorkers int
	newRunID      func() string
}

// DiscovererOptions configura el Discoverer.
type DiscovererOptions struct {
	Catalog      ports.PatternCatalog
	Orchestrator *EngineOrchestrator
	Recorder     ports.Recorder
	Logger       logx.Logger

	// EngineWorkers > 1 procesa engines en paralelo; cada engine se calcula
	// de forma independiente, así que su salida no cambia.
	EngineWorkers int

	// RunID genera el identificador de cada lote (default: uuid v4)
	RunID func() string
}

// NewDiscoverer crea una nueva instancia del Discoverer.
func NewDiscoverer(opts DiscovererOptions) *Discoverer {
	if opts.Logger == nil {
		opts.Logger = logx.NewSilent()
	}
	if opts.Recorder == nil {
		opts.Recorder = ports.NopRecorder{}
	}
	if opts.EngineWorkers <= 0 {
		opts.EngineWorkers = 1
	}
	if opts.RunID == nil {
		opts.RunID = func() string { return uuid.NewString() }
	}

	return &Discoverer{
		catalog:       opts.Catalog,
		orchestrator:  opts.Orchestrator,
		dedupe:        NewDedupeService(),
		recorder:      opts.Recorder,
		logger:        opts.Logger.With("component", "discoverer"),
		engineWorkers: opts.EngineWorkers,
		newRunID:      opts.RunID,
	}
}

// DiscoverOne descubre slugs de un engine. enabled nil habilita las ocho fuentes.
func (d *Discoverer) DiscoverOne(ctx context.Context, engine string, enabled domain.SourceSet, known domain.SlugSet) ([]domain.DiscoveredSlug, error) {
	pattern, err := d.catalog.Lookup(engine)
	if err != nil {
		return nil, err
	}
	if enabled == nil {
		enabled = domain.AllSourcesSet()
	}

	er := d.processEngine(ctx, d.logger, pattern, enabled, known)
	return er.Slugs, ctx.Err()
}

// DiscoverAll descubre slugs de todos los engines del registro.
// enabled nil usa domain.DefaultBatchSources().
func (d *Discoverer) DiscoverAll(ctx context.Context, enabled domain.SourceSet, knownByEngine map[string]domain.SlugSet) (map[string][]domain.DiscoveredSlug, error) {
	run, err := d.RunBatch(ctx, nil, enabled, knownByEngine)
	if run == nil {
		return nil, err
	}
	return run.SlugsByEngine(), err
}

// RunBatch procesa los engines indicados (todos si engines está vacío) y
// retorna el resultado completo con cuentas por etapa y por fuente.
func (d *Discoverer) RunBatch(ctx context.Context, engines []string, enabled domain.SourceSet, knownByEngine map[string]domain.SlugSet) (*domain.RunResult, error) {
	targets, err := d.resolve(engines)
	if err != nil {
		return nil, err
	}
	if enabled == nil {
		enabled = domain.DefaultBatchSources()
	}

	run := domain.NewRunResult(d.newRunID(), enabled)
	logger := d.logger.With("run_id", run.RunID)
	logger.Info("starting discovery",
		"engines", len(targets),
		"sources", enabled.Names(),
		"workers", d.engineWorkers,
	)

	var mu sync.Mutex
	store := func(er *domain.EngineResult) {
		mu.Lock()
		run.Engines[er.Engine] = er
		mu.Unlock()
	}

	if d.engineWorkers <= 1 {
		for _, p := range targets {
			if ctx.Err() != nil {
				break
			}
			store(d.processEngine(ctx, logger, p, enabled, knownByEngine[p.Name()]))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.engineWorkers)
		for _, p := range targets {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				store(d.processEngine(ctx, logger, p, enabled, knownByEngine[p.Name()]))
				return nil
			})
		}
		_ = g.Wait()
	}

	run.FinishedAt = time.Now().UTC()
	logger.Info("discovery completed",
		"engines", len(run.Engines),
		"slugs", run.TotalSlugs(),
		"duration_ms", run.Duration().Milliseconds(),
	)
	return run, ctx.Err()
}

func (d *Discoverer) resolve(engines []string) ([]domain.EnginePattern, error) {
	if len(engines) == 0 {
		return d.catalog.All(), nil
	}
	out := make([]domain.EnginePattern, 0, len(engines))
	for _, name := range engines {
		p, err := d.catalog.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// processEngine aplica orchestrator, dedupe y filtro de conocidos a un engine.
func (d *Discoverer) processEngine(ctx context.Context, logger logx.Logger, pattern domain.EnginePattern, enabled domain.SourceSet, known domain.SlugSet) *domain.EngineResult {
	name := pattern.Name()
	logger = logger.With("engine", name)

	raw, perSource := d.orchestrator.Run(ctx, pattern, enabled)
	deduped := d.dedupe.Deduplicate(raw)
	logger.Info("deduplicated", "raw", len(raw), "unique", len(deduped))

	final := deduped
	if known.Len() > 0 {
		final = d.dedupe.FilterKnown(deduped, known)
		logger.Info("filtered known slugs", "known", known.Len(), "new", len(final))
	}

	d.recorder.EngineSlugs(name, ports.StageRaw, len(raw))
	d.recorder.EngineSlugs(name, ports.StageDeduped, len(deduped))
	d.recorder.EngineSlugs(name, ports.StageFiltered, len(final))

	if final == nil {
		final = []domain.DiscoveredSlug{}
	}
	return &domain.EngineResult{
		Engine:      name,
		Raw:         len(raw),
		Deduped:     len(deduped),
		Filtered:    len(final),
		PerSource:   perSource,
		NewBySource: d.dedupe.CountBySource(final),
		Slugs:       final,
	}
}
