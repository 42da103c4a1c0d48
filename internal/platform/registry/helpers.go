// internal/platform/registry/helpers.go
package registry

import (
	"fmt"
	"time"
)

// Accesores tipados para ports.ConnectorConfig.Custom. Los valores pueden venir
// de defaults built-in (tipos Go), YAML (int, string, []interface{}) o flags,
// así que cada getter acepta las formas que producen esos decoders y cae
// en def en otro caso.

// GetStringConfig retorna custom[key] si es un string no vacío.
func GetStringConfig(custom map[string]interface{}, key, def string) string {
	if val, ok := custom[key].(string); ok && val != "" {
		return val
	}
	return def
}

// GetIntConfig acepta valores int, int64 y float64.
func GetIntConfig(custom map[string]interface{}, key string, def int) int {
	switch val := custom[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return def
	}
}

// GetBoolConfig retorna custom[key] si es un bool.
func GetBoolConfig(custom map[string]interface{}, key string, def bool) bool {
	if val, ok := custom[key].(bool); ok {
		return val
	}
	return def
}

// GetDurationConfig acepta time.Duration, un string de duración ("300ms") o
// un número de segundos como int o float64.
func GetDurationConfig(custom map[string]interface{}, key string, def time.Duration) time.Duration {
	switch val := custom[key].(type) {
	case time.Duration:
		return val
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case int:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	}
	return def
}

// GetSliceConfig acepta []string o un []interface{} formado solo por strings.
func GetSliceConfig(custom map[string]interface{}, key string, def []string) []string {
	switch val := custom[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return def
			}
			out = append(out, s)
		}
		return out
	}
	return def
}

// ValidatePositiveInt retorna error si value <= 0.
func ValidatePositiveInt(field string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", field, value)
	}
	return nil
}

// ValidateNonNegativeInt retorna error si value < 0.
func ValidateNonNegativeInt(field string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", field, value)
	}
	return nil
}

// ValidateIntRange retorna error si value está fuera de [min, max].
func ValidateIntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, min, max, value)
	}
	return nil
}

// ValidatePositiveDuration retorna error si value <= 0.
func ValidatePositiveDuration(field string, value time.Duration) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %v", field, value)
	}
	return nil
}

// ValidateEnum retorna error si value no está en allowed.
func ValidateEnum(field, value string, allowed []string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %s", field, allowed, value)
}
