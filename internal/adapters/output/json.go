// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
)

var _ ports.WriterExporter = (*JSONExporter)(nil)

// EngineFile es el documento escrito por engine.
type EngineFile struct {
	RunID       string       `json:"run_id"`
	Engine      string       `json:"engine"`
	GeneratedAt time.Time    `json:"generated_at"`
	Sources     []string     `json:"sources"`
	Counts      EngineCounts `json:"counts"`
	Slugs       []SlugEntry  `json:"slugs"`
}

// EngineCounts resume las etapas del pipeline de un engine.
type EngineCounts struct {
	Raw         int            `json:"raw"`
	Deduped     int            `json:"deduped"`
	New         int            `json:"new"`
	PerSource   map[string]int `json:"per_source"`
	NewBySource map[string]int `json:"new_by_source"`
}

// SlugEntry es un slug nuevo con su procedencia.
type SlugEntry struct {
	Slug      string `json:"slug"`
	SourceURL string `json:"source_url"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp,omitempty"`
}

// JSONExporter escribe un archivo JSON por engine.
type JSONExporter struct {
	logger logx.Logger
	now    func() time.Time
}

// NewJSONExporter crea el exporter.
func NewJSONExporter(logger logx.Logger) *JSONExporter {
	if logger == nil {
		logger = logx.NewSilent()
	}
	return &JSONExporter{
		logger: logger.With("component", "json-exporter"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *JSONExporter) Name() string { return "json" }

// Export escribe <dir>/<engine>.json por cada engine del resultado.
// Los engines sin slugs nuevos se omiten salvo opts.IncludeEmpty.
func (e *JSONExporter) Export(run *domain.RunResult, opts ports.ExportOptions) error {
	if run == nil {
		return fmt.Errorf("%w: nil run result", domain.ErrExportFailed)
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output directory %s: %v", domain.ErrInvalidOutputPath, dir, err)
	}

	names := make([]string, 0, len(run.Engines))
	for name := range run.Engines {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		if len(run.Engines[name].Slugs) == 0 && !opts.IncludeEmpty {
			continue
		}
		path := filepath.Join(dir, FileName(name))
		if err := e.writeFile(run, name, path, opts); err != nil {
			return err
		}
		written++
		e.logger.Debug("engine exported", "engine", name, "path", path, "slugs", len(run.Engines[name].Slugs))
	}

	e.logger.Info("results exported", "dir", dir, "files", written, "run_id", run.RunID)
	return nil
}

func (e *JSONExporter) writeFile(run *domain.RunResult, engine, path string, opts ports.ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrExportFailed, path, err)
	}
	defer f.Close()

	return e.ExportToWriter(run, engine, f, opts)
}

// ExportToWriter escribe el documento de un engine en w.
func (e *JSONExporter) ExportToWriter(run *domain.RunResult, engine string, w io.Writer, opts ports.ExportOptions) error {
	er, ok := run.Engines[engine]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEngine, engine)
	}

	enc := json.NewEncoder(w)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(e.buildFile(run, er)); err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrExportFailed, engine, err)
	}
	return nil
}

func (e *JSONExporter) buildFile(run *domain.RunResult, er *domain.EngineResult) EngineFile {
	perSource := sourceCounts(er.PerSource)
	newBySource := sourceCounts(er.NewBySource)

	slugs := make([]SlugEntry, 0, len(er.Slugs))
	for _, s := range er.Slugs {
		slugs = append(slugs, SlugEntry{
			Slug:      s.Slug,
			SourceURL: s.SourceURL,
			Source:    s.ArchiveSource.String(),
			Timestamp: s.Timestamp,
		})
	}

	sources := run.Sources
	if sources == nil {
		sources = []string{}
	}

	return EngineFile{
		RunID:       run.RunID,
		Engine:      er.Engine,
		GeneratedAt: e.now(),
		Sources:     sources,
		Counts: EngineCounts{
			Raw:         er.Raw,
			Deduped:     er.Deduped,
			New:         er.Filtered,
			PerSource:   perSource,
			NewBySource: newBySource,
		},
		Slugs: slugs,
	}
}

func sourceCounts(in map[domain.ArchiveSource]int) map[string]int {
	out := make(map[string]int, len(in))
	for src, n := range in {
		out[src.String()] = n
	}
	return out
}

// FileName convierte un nombre de engine en un nombre de archivo válido.
// Ejemplo: "siteminder.v2" -> "siteminder_v2.json"
func FileName(engine string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, engine)
	return sanitized + ".json"
}
