// internal/core/domain/pattern.go
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternSpec es la forma declarativa (built-in o YAML) de un EnginePattern.
type PatternSpec struct {
	Name               string   `yaml:"name"`
	ArchiveURLTemplate string   `yaml:"archive_url"`
	IndexURLTemplate   string   `yaml:"index_url"`
	SlugRegex          string   `yaml:"slug_regex"`
	SlugType           SlugType `yaml:"slug_type"`
	Domains            []string `yaml:"domains"`
	SubdomainRegex     string   `yaml:"subdomain_regex,omitempty"`
}

// EnginePattern describe cómo encontrar slugs de un booking engine.
// Es inmutable: todos los campos son privados y los accessors devuelven copias.
type EnginePattern struct {
	name               string
	archiveURLTemplate string
	indexURLTemplate   string
	slugRegex          *regexp.Regexp
	slugType           SlugType
	domains            []string
	subdomainRegex     *regexp.Regexp
}

// NewEnginePattern valida spec y construye el patrón.
func NewEnginePattern(spec PatternSpec) (EnginePattern, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return EnginePattern{}, ErrEmptyEngineName
	}

	slugRe, err := compileOneGroup(spec.SlugRegex)
	if err != nil {
		return EnginePattern{}, fmt.Errorf("%w: engine %s: slug_regex: %v", ErrInvalidSlugRegex, name, err)
	}

	var subRe *regexp.Regexp
	if strings.TrimSpace(spec.SubdomainRegex) != "" {
		subRe, err = compileOneGroup(spec.SubdomainRegex)
		if err != nil {
			return EnginePattern{}, fmt.Errorf("%w: engine %s: subdomain_regex: %v", ErrInvalidSlugRegex, name, err)
		}
	}

	slugType := spec.SlugType
	if slugType == "" {
		slugType = SlugMixed
	}
	if !slugType.IsValid() {
		return EnginePattern{}, fmt.Errorf("%w: engine %s: %q", ErrInvalidSlugType, name, spec.SlugType)
	}

	domains, err := normalizeDomains(spec.Domains)
	if err != nil {
		return EnginePattern{}, fmt.Errorf("engine %s: %w", name, err)
	}

	return EnginePattern{
		name:               name,
		archiveURLTemplate: strings.TrimSpace(spec.ArchiveURLTemplate),
		indexURLTemplate:   strings.TrimSpace(spec.IndexURLTemplate),
		slugRegex:          slugRe,
		slugType:           slugType,
		domains:            domains,
		subdomainRegex:     subRe,
	}, nil
}

// MustEnginePattern es NewEnginePattern para patrones built-in; hace panic si spec es inválido.
func MustEnginePattern(spec PatternSpec) EnginePattern {
	p, err := NewEnginePattern(spec)
	if err != nil {
		panic(err)
	}
	return p
}

func (p EnginePattern) Name() string               { return p.name }
func (p EnginePattern) ArchiveURLTemplate() string { return p.archiveURLTemplate }
func (p EnginePattern) IndexURLTemplate() string   { return p.indexURLTemplate }
func (p EnginePattern) SlugRegex() *regexp.Regexp  { return p.slugRegex }
func (p EnginePattern) SlugType() SlugType         { return p.slugType }

// Domains retorna una copia de los dominios asociados al engine.
func (p EnginePattern) Domains() []string {
	out := make([]string, len(p.domains))
	copy(out, p.domains)
	return out
}

// HasDomains indica si las fuentes basadas en dominio tienen algo que consultar.
func (p EnginePattern) HasDomains() bool {
	return len(p.domains) > 0
}

// SubdomainRegex retorna el regex de subdominio si el engine codifica el slug en DNS.
func (p EnginePattern) SubdomainRegex() (*regexp.Regexp, bool) {
	return p.subdomainRegex, p.subdomainRegex != nil
}

// IsZero indica si el patrón no fue construido con NewEnginePattern.
func (p EnginePattern) IsZero() bool {
	return p.name == "" && p.slugRegex == nil
}

// Spec reconstruye la forma declarativa del patrón.
func (p EnginePattern) Spec() PatternSpec {
	spec := PatternSpec{
		Name:               p.name,
		ArchiveURLTemplate: p.archiveURLTemplate,
		IndexURLTemplate:   p.indexURLTemplate,
		SlugType:           p.slugType,
		Domains:            p.Domains(),
	}
	if p.slugRegex != nil {
		spec.SlugRegex = p.slugRegex.String()
	}
	if p.subdomainRegex != nil {
		spec.SubdomainRegex = p.subdomainRegex.String()
	}
	return spec
}

// String retorna una representación legible del patrón.
func (p EnginePattern) String() string {
	_, sub := p.SubdomainRegex()
	return fmt.Sprintf("EnginePattern{name=%s, type=%s, domains=%d, subdomain=%t}",
		p.name, p.slugType, len(p.domains), sub)
}

func compileOneGroup(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	if n := re.NumSubexp(); n != 1 {
		return nil, fmt.Errorf("want exactly 1 capture group, got %d", n)
	}
	return re, nil
}

func normalizeDomains(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, d := range raw {
		d = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" {
			continue
		}
		if strings.ContainsAny(d, "/:* ") || !strings.Contains(d, ".") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPatternDom, d)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}
