// internal/core/usecases/discoverer_test.go
package usecases

import (
	"context"
	"testing"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/patterns"
	"slugscout/internal/platform/logx"
	"slugscout/internal/testutil"
)

// allSources crea un mock por fuente que emite "<fuente>-<engine>" más un slug compartido.
func allSources() map[domain.ArchiveSource]*mockConnector {
	out := make(map[domain.ArchiveSource]*mockConnector)
	for _, src := range domain.AllArchiveSources() {
		m := newMockConnector(src)
		m.fetchFunc = func(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
			return hitsFor(p.Name(), src, src.String()+"-"+p.Name(), "Shared"), nil
		}
		out[src] = m
	}
	return out
}

func newTestDiscoverer(mocks map[domain.ArchiveSource]*mockConnector, rec ports.Recorder, workers int) *Discoverer {
	conns := make([]ports.Connector, 0, len(mocks))
	for _, m := range mocks {
		conns = append(conns, m)
	}
	return NewDiscoverer(DiscovererOptions{
		Catalog:       patterns.Builtin(),
		Orchestrator:  NewEngineOrchestrator(EngineOrchestratorOptions{Connectors: conns}),
		Recorder:      rec,
		Logger:        logx.NewSilent(),
		EngineWorkers: workers,
		RunID:         func() string { return "run-1" },
	})
}

func TestDiscoverer_DiscoverOne_DefaultsToAllSources(t *testing.T) {
	mocks := allSources()
	d := newTestDiscoverer(mocks, nil, 1)

	slugs, err := d.DiscoverOne(context.Background(), "rms", nil, nil)
	testutil.AssertNoError(t, err, "discover one")
	testutil.AssertEqual(t, slugs[0].Slug, "wayback-rms", "wayback first")
	testutil.AssertEqual(t, slugs[1].Slug, "Shared", "shared kept once")
	testutil.AssertLen(t, slugs, 9, "eight sources plus one shared slug")
	for src, m := range mocks {
		testutil.AssertEqual(t, m.callCount(), 1, "called: "+src.String())
	}
}

func TestDiscoverer_DiscoverOne_FiltersKnown(t *testing.T) {
	rec := newMockRecorder()
	d := newTestDiscoverer(allSources(), rec, 1)

	slugs, err := d.DiscoverOne(context.Background(), "cloudbeds",
		domain.NewSourceSet(domain.SourceWayback, domain.SourceCommonCrawl),
		domain.NewSlugSet("shared"))
	testutil.AssertNoError(t, err, "discover one")
	testutil.AssertEqual(t, slugsOf(slugs), []string{"wayback-cloudbeds", "commoncrawl-cloudbeds"}, "known slug removed")

	testutil.AssertEqual(t, rec.stage("cloudbeds", ports.StageRaw), 4, "raw")
	testutil.AssertEqual(t, rec.stage("cloudbeds", ports.StageDeduped), 3, "deduped")
	testutil.AssertEqual(t, rec.stage("cloudbeds", ports.StageFiltered), 2, "filtered")
}

func TestDiscoverer_DiscoverOne_UnknownEngine(t *testing.T) {
	mocks := allSources()
	d := newTestDiscoverer(mocks, nil, 1)

	_, err := d.DiscoverOne(context.Background(), "nope", nil, nil)
	testutil.AssertErrorIs(t, err, domain.ErrUnknownEngine, "unknown engine")
	testutil.AssertEqual(t, mocks[domain.SourceWayback].callCount(), 0, "no connector called")
}

func TestDiscoverer_DiscoverAll_DefaultsToBatchSources(t *testing.T) {
	mocks := allSources()
	d := newTestDiscoverer(mocks, nil, 1)

	byEngine, err := d.DiscoverAll(context.Background(), nil, nil)
	testutil.AssertNoError(t, err, "discover all")
	testutil.AssertLen(t, byEngine, patterns.Builtin().Len(), "every engine present")

	engines := patterns.Builtin().Len()
	for src, m := range mocks {
		want := 0
		if domain.DefaultBatchSources().Enabled(src) {
			want = engines
		}
		testutil.AssertEqual(t, m.callCount(), want, "calls for "+src.String())
	}
	testutil.AssertEqual(t, slugsOf(byEngine["mews"]), []string{
		"wayback-mews", "Shared", "commoncrawl-mews", "alienvault-mews", "urlscan-mews",
	}, "four default sources, deduped")
}

func TestDiscoverer_DiscoverAll_KnownPerEngine(t *testing.T) {
	d := newTestDiscoverer(allSources(), nil, 1)

	byEngine, err := d.DiscoverAll(context.Background(),
		domain.NewSourceSet(domain.SourceWayback),
		map[string]domain.SlugSet{"rms": domain.NewSlugSet("SHARED")})
	testutil.AssertNoError(t, err, "discover all")
	testutil.AssertEqual(t, slugsOf(byEngine["rms"]), []string{"wayback-rms"}, "rms filtered")
	testutil.AssertEqual(t, slugsOf(byEngine["cloudbeds"]), []string{"wayback-cloudbeds", "Shared"}, "cloudbeds untouched")
}

func TestDiscoverer_RunBatch_ParallelMatchesSequential(t *testing.T) {
	seq, err := newTestDiscoverer(allSources(), nil, 1).RunBatch(context.Background(), nil, domain.AllSourcesSet(), nil)
	testutil.AssertNoError(t, err, "sequential")
	par, err := newTestDiscoverer(allSources(), nil, 4).RunBatch(context.Background(), nil, domain.AllSourcesSet(), nil)
	testutil.AssertNoError(t, err, "parallel")

	testutil.AssertEqual(t, par.SlugsByEngine(), seq.SlugsByEngine(), "identical per-engine output")
}

func TestDiscoverer_RunBatch_Metadata(t *testing.T) {
	d := newTestDiscoverer(allSources(), nil, 1)

	run, err := d.RunBatch(context.Background(), []string{"rms", "innroad"}, domain.NewSourceSet(domain.SourceCrtSh, domain.SourceWayback), nil)
	testutil.AssertNoError(t, err, "run batch")
	testutil.AssertEqual(t, run.RunID, "run-1", "run id")
	testutil.AssertEqual(t, run.Sources, []string{"wayback", "crtsh"}, "canonical source names")
	testutil.AssertLen(t, run.Engines, 2, "selected engines only")
	testutil.AssertFalse(t, run.FinishedAt.IsZero(), "finished")

	er := run.Engines["rms"]
	testutil.AssertEqual(t, er.Raw, 4, "raw")
	testutil.AssertEqual(t, er.Deduped, 3, "deduped")
	testutil.AssertEqual(t, er.Filtered, 3, "filtered")
	testutil.AssertEqual(t, er.PerSource[domain.SourceCrtSh], 2, "per source")
	testutil.AssertEqual(t, er.NewBySource, map[domain.ArchiveSource]int{
		domain.SourceWayback: 2,
		domain.SourceCrtSh:   1,
	}, "shared slug credited to the first source")
}

func TestDiscoverer_RunBatch_NewBySourceAfterKnown(t *testing.T) {
	d := newTestDiscoverer(allSources(), nil, 1)

	run, err := d.RunBatch(context.Background(), []string{"rms"},
		domain.NewSourceSet(domain.SourceCrtSh, domain.SourceWayback),
		map[string]domain.SlugSet{"rms": domain.NewSlugSet("wayback-rms")})
	testutil.AssertNoError(t, err, "run batch")

	er := run.Engines["rms"]
	testutil.AssertEqual(t, er.Filtered, 2, "filtered")
	testutil.AssertEqual(t, er.NewBySource[domain.SourceWayback], 1, "known slug not counted")
	testutil.AssertEqual(t, er.NewBySource[domain.SourceCrtSh], 1, "crtsh")
}

func TestDiscoverer_RunBatch_UnknownEngine(t *testing.T) {
	d := newTestDiscoverer(allSources(), nil, 1)

	_, err := d.RunBatch(context.Background(), []string{"rms", "nope"}, nil, nil)
	testutil.AssertErrorIs(t, err, domain.ErrUnknownEngine, "unknown engine")
}

func TestDiscoverer_RunBatch_CancelledContext(t *testing.T) {
	mocks := allSources()
	d := newTestDiscoverer(mocks, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := d.RunBatch(ctx, nil, nil, nil)
	testutil.AssertErrorIs(t, err, context.Canceled, "cancelled")
	testutil.AssertNotNil(t, run, "partial run returned")
	testutil.AssertEqual(t, mocks[domain.SourceWayback].callCount(), 0, "nothing executed")
}

func TestNewDiscoverer_DefaultRunID(t *testing.T) {
	d := NewDiscoverer(DiscovererOptions{
		Catalog:      patterns.Builtin(),
		Orchestrator: NewEngineOrchestrator(EngineOrchestratorOptions{}),
	})

	run, err := d.RunBatch(context.Background(), []string{"mews"}, nil, nil)
	testutil.AssertNoError(t, err, "run batch")
	testutil.AssertLen(t, run.RunID, 36, "uuid string")
}
