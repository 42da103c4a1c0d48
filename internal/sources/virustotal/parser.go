// internal/sources/virustotal/parser.go
package virustotal

import (
	"encoding/json"
	"strconv"

	"slugscout/internal/platform/errors"
)

type urlsResponse struct {
	Data []struct {
		Attributes struct {
			URL              string `json:"url"`
			LastAnalysisDate *int64 `json:"last_analysis_date"`
		} `json:"attributes"`
	} `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type entry struct {
	url       string
	timestamp string
}

func parsePage(body []byte) ([]entry, string, error) {
	var resp urlsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", errors.Wrapf(errors.ErrInvalidResponse, "virustotal: %v", err)
	}

	entries := make([]entry, 0, len(resp.Data))
	for _, d := range resp.Data {
		e := entry{url: d.Attributes.URL}
		if d.Attributes.LastAnalysisDate != nil {
			e.timestamp = strconv.FormatInt(*d.Attributes.LastAnalysisDate, 10)
		}
		entries = append(entries, e)
	}
	return entries, resp.Links.Next, nil
}
