// internal/sources/urlscan/parser.go
package urlscan

import (
	"strings"

	"github.com/tidwall/gjson"

	"slugscout/internal/platform/errors"
)

type result struct {
	pageURL string
	taskURL string
	time    string
}

type searchPage struct {
	results []result
	cursor  string
}

// parsePage lee una respuesta de búsqueda. El cursor son los valores sort del
// último resultado unidos por comas, como los espera search_after.
func parsePage(body []byte) (searchPage, error) {
	if !gjson.ValidBytes(body) {
		return searchPage{}, errors.Wrap(errors.ErrInvalidResponse, "urlscan: malformed search response")
	}

	items := gjson.GetBytes(body, "results").Array()
	page := searchPage{results: make([]result, 0, len(items))}
	for _, item := range items {
		page.results = append(page.results, result{
			pageURL: item.Get("page.url").String(),
			taskURL: item.Get("task.url").String(),
			time:    item.Get("task.time").String(),
		})
	}

	if n := len(items); n > 0 {
		sortVals := items[n-1].Get("sort").Array()
		parts := make([]string, 0, len(sortVals))
		for _, v := range sortVals {
			parts = append(parts, v.String())
		}
		page.cursor = strings.Join(parts, ",")
	}
	return page, nil
}
