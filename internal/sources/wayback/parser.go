// internal/sources/wayback/parser.go
package wayback

import (
	"bytes"
	"encoding/json"

	"slugscout/internal/platform/errors"
)

type capture struct {
	original  string
	timestamp string
}

// parseRows decodifica un body CDX JSON: un array de arrays de strings cuya
// primera fila es la cabecera. Se omiten las filas con menos de dos campos.
func parseRows(body []byte) ([]capture, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([]capture, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		out = append(out, capture{original: row[0], timestamp: row[1]})
	}
	return out, nil
}
