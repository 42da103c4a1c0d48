// internal/sources/commoncrawl/parser.go
package commoncrawl

import (
	"bytes"

	"github.com/tidwall/gjson"

	"slugscout/internal/platform/errors"
	"slugscout/internal/sources/common"
)

type record struct {
	url       string
	timestamp string
}

// parseRecords recorre un body JSON delimitado por líneas. Las líneas
// inválidas se cuentan; si ninguna parsea, el body se reporta como malformado.
func parseRecords(body []byte, fn func(record)) error {
	var valid, invalid int
	err := common.ScanLines(bytes.NewReader(body), func(line []byte) error {
		if !gjson.ValidBytes(line) {
			invalid++
			return nil
		}
		valid++
		res := gjson.GetManyBytes(line, "url", "timestamp")
		if u := res[0].String(); u != "" {
			fn(record{url: u, timestamp: res[1].String()})
		}
		return nil
	})
	if err != nil {
		return err
	}
	if valid == 0 && invalid > 0 {
		return errors.Wrapf(errors.ErrInvalidResponse, "%d unparseable cdx lines", invalid)
	}
	return nil
}
