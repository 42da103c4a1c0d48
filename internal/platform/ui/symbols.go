// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status representa el estado de una fuente dentro de una ejecución
type Status int

const (
	StatusSkipped Status = iota
	StatusEmpty
	StatusSuccess
)

// String convierte el status a string
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusEmpty:
		return "empty"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Symbol retorna el símbolo Unicode para cada estado
func (s Status) Symbol() string {
	switch s {
	case StatusSkipped:
		return "⊘"
	case StatusEmpty:
		return "·"
	case StatusSuccess:
		return "✓"
	default:
		return "?"
	}
}

// Style retorna un pterm.Style configurado para el estado
func (s Status) Style() *pterm.Style {
	switch s {
	case StatusSuccess:
		return StyleSuccess
	case StatusEmpty:
		return StyleWarning
	default:
		return StyleSecondary
	}
}

// Icons globales
var (
	IconEngine  = "🏨"
	IconSources = "🔌"
	IconTime    = "⏱"
	IconSlugs   = "📦"
)

var SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
