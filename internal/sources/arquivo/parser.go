// internal/sources/arquivo/parser.go
package arquivo

import (
	"bytes"

	"github.com/tidwall/gjson"

	"slugscout/internal/platform/errors"
)

const (
	colTimestamp = 1
	colOriginal  = 2
)

type row struct {
	original  string
	timestamp string
}

// parseRows lee un body CDX con forma de array de filas
// [urlkey, timestamp, original, mimetype, statuscode, digest, length].
// Se omiten las filas demasiado cortas para traer la URL original.
func parseRows(body []byte) ([]row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "arquivo: malformed cdx body")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "arquivo: cdx body is not an array")
	}

	var rows []row
	parsed.ForEach(func(_, r gjson.Result) bool {
		cols := r.Array()
		if len(cols) <= colOriginal {
			return true
		}
		rows = append(rows, row{
			original:  cols[colOriginal].String(),
			timestamp: cols[colTimestamp].String(),
		})
		return true
	})
	return rows, nil
}
