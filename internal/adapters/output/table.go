// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"slugscout/internal/core/domain"
)

// WriteTable imprime un resumen en texto plano (salidas que no son terminal).
func WriteTable(out io.Writer, run *domain.RunResult) error {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)

	fmt.Fprintf(w, "\n=== slugscout run %s ===\n", run.RunID)
	fmt.Fprintf(w, "Sources:\t%s\n", strings.Join(run.Sources, ", "))
	fmt.Fprintf(w, "Duration:\t%s\n", run.Duration().Round(1e6))
	fmt.Fprintf(w, "New slugs:\t%d\n\n", run.TotalSlugs())

	if len(run.Engines) > 0 {
		fmt.Fprintln(w, "ENGINE\tRAW\tUNIQUE\tNEW")
		fmt.Fprintln(w, "------\t---\t------\t---")

		names := make([]string, 0, len(run.Engines))
		for name := range run.Engines {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			er := run.Engines[name]
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, er.Raw, er.Deduped, er.Filtered)
		}
	} else {
		fmt.Fprintln(w, "No engines processed.")
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	_, err := fmt.Fprintln(out)
	return err
}
