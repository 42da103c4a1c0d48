// internal/patterns/loader.go
package patterns

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/publicsuffix"
	"gopkg.in/yaml.v3"

	"slugscout/internal/core/domain"
)

// File es el formato YAML del overlay de patrones.
//
//	engines:
//	  - name: cloudbeds
//	    archive_url: hotels.cloudbeds.com/reservation/*
//	    slug_regex: 'cloudbeds\.com/reservation/([^/?#&]+)'
//	    domains: [cloudbeds.com]
type File struct {
	Engines []domain.PatternSpec `yaml:"engines"`
}

// LoadFile lee un overlay de patrones desde path.
func LoadFile(path string) ([]domain.PatternSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigLoadFailed, err)
	}
	return Parse(data)
}

// Parse decodifica un overlay YAML. Campos desconocidos son un error.
func Parse(data []byte) ([]domain.PatternSpec, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: patterns: %v", domain.ErrInvalidConfig, err)
	}
	return f.Engines, nil
}

// LoadRegistry retorna el registry built-in con el overlay de path aplicado.
// path vacío retorna el built-in.
func LoadRegistry(path string) (*Registry, error) {
	base := Builtin()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	specs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return base.Overlay(specs)
}

// ValidateDomain exige que d tenga un eTLD+1 registrable (no puede ser un sufijo público).
func ValidateDomain(d string) error {
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return fmt.Errorf("%w: %q: %v", domain.ErrInvalidPatternDom, d, err)
	}
	return nil
}
