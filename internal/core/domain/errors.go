// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Pattern errors
	ErrEmptyEngineName   = errors.New("engine name cannot be empty")
	ErrInvalidSlugRegex  = errors.New("invalid slug regex")
	ErrInvalidSlugType   = errors.New("invalid slug type")
	ErrInvalidPatternDom = errors.New("invalid pattern domain")
	ErrDuplicateEngine   = errors.New("duplicate engine name")

	// Lookup errors
	ErrUnknownEngine = errors.New("unknown engine")
	ErrUnknownSource = errors.New("unknown archive source")

	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrConfigLoadFailed = errors.New("failed to load configuration")

	// Export errors
	ErrExportFailed      = errors.New("export failed")
	ErrInvalidOutputPath = errors.New("invalid output path")
)
