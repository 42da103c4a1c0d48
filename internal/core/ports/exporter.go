// internal/core/ports/exporter.go
package ports

import (
	"io"

	"slugscout/internal/core/domain"
)

// Exporter es el port para entregar los resultados de una ejecución al consumidor downstream.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "json")
	Name() string

	// Export escribe el resultado según opts
	Export(run *domain.RunResult, opts ExportOptions) error
}

// WriterExporter permite exportar a cualquier io.Writer.
type WriterExporter interface {
	Exporter

	// ExportToWriter exporta un engine a un Writer personalizado
	ExportToWriter(run *domain.RunResult, engine string, w io.Writer, opts ExportOptions) error
}

// ExportOptions configura las opciones de exportación.
type ExportOptions struct {
	// OutputDir directorio donde escribir un archivo por engine
	OutputDir string

	// Pretty indica si el JSON debe indentarse
	Pretty bool

	// IncludeEmpty escribe también engines sin slugs
	IncludeEmpty bool
}

// DefaultExportOptions retorna opciones por defecto.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		OutputDir:    "discovered_slugs",
		Pretty:       true,
		IncludeEmpty: false,
	}
}
