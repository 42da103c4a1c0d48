// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Estilos preconfigurados para diferentes contextos
var (
	// StylePrimary - headers y totales
	StylePrimary = pterm.NewStyle(pterm.FgLightBlue, pterm.Bold)

	// StyleSuccess - fuentes con hits
	StyleSuccess = pterm.NewStyle(pterm.FgGreen)

	// StyleWarning - fuentes habilitadas sin hits
	StyleWarning = pterm.NewStyle(pterm.FgYellow)

	// StyleSecondary - texto secundario, fuentes omitidas
	StyleSecondary = pterm.NewStyle(pterm.FgGray)
)

// headerStyle - fondo del encabezado del resumen
var headerStyle = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)
