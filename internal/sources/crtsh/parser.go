// internal/sources/crtsh/parser.go
package crtsh

import (
	"encoding/json"
	"strings"

	"slugscout/internal/platform/errors"
)

type certRecord struct {
	NameValue string `json:"name_value"`
}

// parseNames aplana los campos name_value, que pueden traer varios
// nombres separados por saltos de línea, en una lista sin duplicados (sin distinguir mayúsculas).
func parseNames(body []byte) ([]string, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var records []certRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "crtsh: %v", err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		for _, name := range strings.Split(r.NameValue, "\n") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, name)
		}
	}
	return names, nil
}

// candidates descarta los comodines y el dominio desnudo.
func candidates(names []string, domain string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, "*.") || strings.EqualFold(name, domain) {
			continue
		}
		out = append(out, name)
	}
	return out
}
