// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"sync"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
)

// mockConnector es un mock de ports.Connector para tests del orchestrator
type mockConnector struct {
	name      domain.ArchiveSource
	fetchFunc func(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error)

	mu       sync.Mutex
	calls    int
	engines  []string
	closed   bool
	closeErr error
}

func newMockConnector(name domain.ArchiveSource) *mockConnector {
	return &mockConnector{name: name}
}

func (m *mockConnector) Name() domain.ArchiveSource {
	return m.name
}

func (m *mockConnector) Fetch(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	m.mu.Lock()
	m.calls++
	m.engines = append(m.engines, p.Name())
	m.mu.Unlock()

	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, p)
	}
	return nil, nil
}

func (m *mockConnector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *mockConnector) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// connectorWithSlugs crea un mock que retorna los slugs dados para cualquier engine
func connectorWithSlugs(name domain.ArchiveSource, slugs ...string) *mockConnector {
	m := newMockConnector(name)
	m.fetchFunc = func(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
		return hitsFor(p.Name(), name, slugs...), nil
	}
	return m
}

// connectorWithError crea un mock que retorna hits parciales y un error
func connectorWithError(name domain.ArchiveSource, err error, slugs ...string) *mockConnector {
	m := newMockConnector(name)
	m.fetchFunc = func(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
		return hitsFor(p.Name(), name, slugs...), err
	}
	return m
}

// connectorWithPanic crea un mock que entra en pánico
func connectorWithPanic(name domain.ArchiveSource) *mockConnector {
	m := newMockConnector(name)
	m.fetchFunc = func(ctx context.Context, p domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
		panic("boom")
	}
	return m
}

func hitsFor(engine string, source domain.ArchiveSource, slugs ...string) []domain.DiscoveredSlug {
	out := make([]domain.DiscoveredSlug, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, domain.DiscoveredSlug{
			Engine:        engine,
			Slug:          s,
			SourceURL:     "https://example.test/" + s,
			ArchiveSource: source,
		})
	}
	return out
}

// mockRecorder registra las cuentas recibidas (thread-safe)
type mockRecorder struct {
	mu     sync.Mutex
	hits   map[domain.ArchiveSource]int
	errors map[domain.ArchiveSource]int
	panics map[domain.ArchiveSource]int
	stages map[string]map[ports.Stage]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		hits:   make(map[domain.ArchiveSource]int),
		errors: make(map[domain.ArchiveSource]int),
		panics: make(map[domain.ArchiveSource]int),
		stages: make(map[string]map[ports.Stage]int),
	}
}

func (r *mockRecorder) SourceHits(engine string, source domain.ArchiveSource, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[source] += n
}

func (r *mockRecorder) SourceError(source domain.ArchiveSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[source]++
}

func (r *mockRecorder) SourcePanic(source domain.ArchiveSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics[source]++
}

func (r *mockRecorder) EngineSlugs(engine string, stage ports.Stage, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages[engine] == nil {
		r.stages[engine] = make(map[ports.Stage]int)
	}
	r.stages[engine][stage] = n
}

func (r *mockRecorder) stage(engine string, stage ports.Stage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stages[engine][stage]
}
