// internal/platform/ui/summary.go
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"slugscout/internal/core/domain"
)

// RenderSummary escribe en w el resumen de una ejecución: cabecera, tabla
// por engine y totales por fuente.
func RenderSummary(w io.Writer, run *domain.RunResult) error {
	var b strings.Builder

	header := pterm.DefaultHeader.
		WithBackgroundStyle(headerStyle).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		WithFullWidth(false)
	b.WriteString(header.Sprint("slugscout - Run " + shortID(run.RunID)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s Sources: %s\n", IconSources, strings.Join(run.Sources, ", ")))
	b.WriteString(fmt.Sprintf("%s Duration: %s\n", IconTime, formatDuration(run.Duration())))
	b.WriteString(fmt.Sprintf("%s New slugs: %s\n\n", IconSlugs, StylePrimary.Sprint(run.TotalSlugs())))

	engines, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(engineTable(run)).
		Srender()
	if err != nil {
		return err
	}
	b.WriteString(engines)
	b.WriteString("\n\n")

	sources, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(sourceTable(run)).
		Srender()
	if err != nil {
		return err
	}
	b.WriteString(sources)
	b.WriteString("\n")

	_, err = io.WriteString(w, b.String())
	return err
}

// engineTable arma una fila por engine, en orden alfabético.
func engineTable(run *domain.RunResult) pterm.TableData {
	data := pterm.TableData{{"Engine", "Raw", "Unique", "New"}}
	for _, name := range sortedEngines(run) {
		er := run.Engines[name]
		data = append(data, []string{
			name,
			fmt.Sprintf("%d", er.Raw),
			fmt.Sprintf("%d", er.Deduped),
			fmt.Sprintf("%d", er.Filtered),
		})
	}
	return data
}

// sourceTable suma los hits crudos de cada fuente en todos los engines.
func sourceTable(run *domain.RunResult) pterm.TableData {
	enabled := make(map[string]bool, len(run.Sources))
	for _, s := range run.Sources {
		enabled[s] = true
	}

	totals := make(map[domain.ArchiveSource]int)
	for _, er := range run.Engines {
		for src, n := range er.PerSource {
			totals[src] += n
		}
	}

	data := pterm.TableData{{"", "Source", "Hits"}}
	for _, src := range domain.AllArchiveSources() {
		status := sourceStatus(enabled[src.String()], totals[src])
		data = append(data, []string{
			status.Style().Sprint(status.Symbol()),
			status.Style().Sprint(src.String()),
			fmt.Sprintf("%d", totals[src]),
		})
	}
	return data
}

func sourceStatus(enabled bool, hits int) Status {
	switch {
	case !enabled:
		return StatusSkipped
	case hits == 0:
		return StatusEmpty
	default:
		return StatusSuccess
	}
}

func sortedEngines(run *domain.RunResult) []string {
	names := make([]string, 0, len(run.Engines))
	for name := range run.Engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration formatea una duración de manera legible
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
