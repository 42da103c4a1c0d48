// internal/adapters/known/known.go

// Package known carga los slugs ya conocidos por engine, que el descubrimiento
// descarta antes de escribir resultados.
package known

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"slugscout/internal/core/domain"
)

// Slugs es el formato YAML del archivo de slugs conocidos.
//
//	cloudbeds:
//	  - hotel-abc
//	  - Seaside-Inn
//	mews: []
type Slugs map[string][]string

// LoadFile lee el archivo en path. path vacío retorna un mapa nil (sin filtro).
func LoadFile(path string) (map[string]domain.SlugSet, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: known slugs: %v", domain.ErrConfigLoadFailed, err)
	}
	return Parse(data)
}

// Parse decodifica el YAML en un SlugSet por engine. Los nombres de engine
// se normalizan a minúsculas y los slugs vacíos se ignoran.
func Parse(data []byte) (map[string]domain.SlugSet, error) {
	var raw Slugs
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]domain.SlugSet{}, nil
		}
		return nil, fmt.Errorf("%w: known slugs: %v", domain.ErrInvalidConfig, err)
	}

	out := make(map[string]domain.SlugSet, len(raw))
	for engine, slugs := range raw {
		name := strings.ToLower(strings.TrimSpace(engine))
		if name == "" {
			return nil, fmt.Errorf("%w: known slugs: %v", domain.ErrInvalidConfig, domain.ErrEmptyEngineName)
		}
		set, ok := out[name]
		if !ok {
			set = domain.NewSlugSet()
			out[name] = set
		}
		for _, s := range slugs {
			if s = strings.TrimSpace(s); s != "" {
				set.Add(s)
			}
		}
	}
	return out, nil
}

// Total cuenta los slugs conocidos de todos los engines.
func Total(sets map[string]domain.SlugSet) int {
	n := 0
	for _, s := range sets {
		n += s.Len()
	}
	return n
}
