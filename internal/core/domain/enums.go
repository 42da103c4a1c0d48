// internal/core/domain/enums.go
package domain

import (
	"fmt"
	"strings"
)

// ArchiveSource identifica el archivo u OSINT del que proviene un hit.
type ArchiveSource string

const (
	SourceWayback     ArchiveSource = "wayback"
	SourceCommonCrawl ArchiveSource = "commoncrawl"
	SourceAlienVault  ArchiveSource = "alienvault"
	SourceURLScan     ArchiveSource = "urlscan"
	SourceVirusTotal  ArchiveSource = "virustotal"
	SourceCrtSh       ArchiveSource = "crtsh"
	SourceArquivo     ArchiveSource = "arquivo"
	SourceGitHub      ArchiveSource = "github"
)

// allArchiveSources está en orden canónico de invocación.
var allArchiveSources = []ArchiveSource{
	SourceWayback,
	SourceCommonCrawl,
	SourceAlienVault,
	SourceURLScan,
	SourceVirusTotal,
	SourceCrtSh,
	SourceArquivo,
	SourceGitHub,
}

// AllArchiveSources retorna las ocho fuentes en orden canónico.
func AllArchiveSources() []ArchiveSource {
	out := make([]ArchiveSource, len(allArchiveSources))
	copy(out, allArchiveSources)
	return out
}

// IsValid verifica si la fuente es conocida.
func (s ArchiveSource) IsValid() bool {
	return s.Order() >= 0
}

// Order retorna la posición canónica de la fuente, o -1 si es desconocida.
func (s ArchiveSource) Order() int {
	for i, known := range allArchiveSources {
		if s == known {
			return i
		}
	}
	return -1
}

// String retorna la representación string de la fuente.
func (s ArchiveSource) String() string {
	return string(s)
}

// ParseArchiveSource normaliza y valida un nombre de fuente.
func ParseArchiveSource(raw string) (ArchiveSource, error) {
	s := ArchiveSource(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, raw)
	}
	return s, nil
}

// SlugType es una etiqueta informativa sobre la forma del slug.
// No altera el comportamiento de ningún conector.
type SlugType string

const (
	SlugNumeric      SlugType = "numeric"
	SlugHex          SlugType = "hex"
	SlugAlphanumeric SlugType = "alphanumeric"
	SlugUUID         SlugType = "uuid"
	SlugMixed        SlugType = "mixed"
)

// IsValid verifica si el tipo de slug es válido.
func (t SlugType) IsValid() bool {
	switch t {
	case SlugNumeric, SlugHex, SlugAlphanumeric, SlugUUID, SlugMixed:
		return true
	default:
		return false
	}
}

// String retorna la representación string del tipo.
func (t SlugType) String() string {
	return string(t)
}
