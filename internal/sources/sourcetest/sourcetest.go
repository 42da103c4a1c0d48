// internal/sources/sourcetest/sourcetest.go

// Package sourcetest contiene fixtures compartidos por los tests de conectores.
package sourcetest

import (
	"testing"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/patterns"
	"slugscout/internal/testutil"
)

// Config retorna una configuración apuntando a baseURL con el espaciado,
// los reintentos y las esperas reales desactivados.
func Config(baseURL string, sleeper *testutil.SleepRecorder) ports.ConnectorConfig {
	cfg := ports.DefaultConnectorConfig()
	cfg.BaseURL = baseURL
	cfg.PageDelay = -1
	cfg.Retries = 0
	if sleeper != nil {
		cfg.Sleep = sleeper.Sleep
	}
	return cfg
}

// Pattern retorna un patrón built-in por nombre.
func Pattern(t *testing.T, name string) domain.EnginePattern {
	t.Helper()
	p, ok := patterns.Builtin().Get(name)
	if !ok {
		t.Fatalf("built-in engine %q not found", name)
	}
	return p
}

// WithoutDomains retorna p reconstruido sin dominios.
func WithoutDomains(t *testing.T, p domain.EnginePattern) domain.EnginePattern {
	t.Helper()
	spec := p.Spec()
	spec.Domains = nil
	return domain.MustEnginePattern(spec)
}

// WithDomains retorna p reconstruido con los dominios indicados.
func WithDomains(t *testing.T, p domain.EnginePattern, domains ...string) domain.EnginePattern {
	t.Helper()
	spec := p.Spec()
	spec.Domains = domains
	return domain.MustEnginePattern(spec)
}

// WithoutSubdomainRegex retorna p reconstruido sin regex de subdominio.
func WithoutSubdomainRegex(t *testing.T, p domain.EnginePattern) domain.EnginePattern {
	t.Helper()
	spec := p.Spec()
	spec.SubdomainRegex = ""
	return domain.MustEnginePattern(spec)
}

// Slugs retorna el slug de cada hit en orden.
func Slugs(hits []domain.DiscoveredSlug) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Slug
	}
	return out
}
