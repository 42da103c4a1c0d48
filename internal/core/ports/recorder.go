// internal/core/ports/recorder.go
package ports

import "slugscout/internal/core/domain"

// Stage identifica una etapa del pipeline por engine.
type Stage string

const (
	StageRaw      Stage = "raw"
	StageDeduped  Stage = "deduped"
	StageFiltered Stage = "filtered"
)

// Recorder recibe las cuentas del descubrimiento (métricas, dashboards).
// Las implementaciones deben ser seguras para uso concurrente.
type Recorder interface {
	SourceHits(engine string, source domain.ArchiveSource, n int)
	SourceError(source domain.ArchiveSource)
	SourcePanic(source domain.ArchiveSource)
	EngineSlugs(engine string, stage Stage, n int)
}

// NopRecorder descarta todas las cuentas.
type NopRecorder struct{}

func (NopRecorder) SourceHits(string, domain.ArchiveSource, int) {}
func (NopRecorder) SourceError(domain.ArchiveSource)             {}
func (NopRecorder) SourcePanic(domain.ArchiveSource)             {}
func (NopRecorder) EngineSlugs(string, Stage, int)               {}

// MultiRecorder reenvía cada cuenta a todos sus recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) SourceHits(engine string, source domain.ArchiveSource, n int) {
	for _, r := range m {
		r.SourceHits(engine, source, n)
	}
}

func (m MultiRecorder) SourceError(source domain.ArchiveSource) {
	for _, r := range m {
		r.SourceError(source)
	}
}

func (m MultiRecorder) SourcePanic(source domain.ArchiveSource) {
	for _, r := range m {
		r.SourcePanic(source)
	}
}

func (m MultiRecorder) EngineSlugs(engine string, stage Stage, n int) {
	for _, r := range m {
		r.EngineSlugs(engine, stage, n)
	}
}
