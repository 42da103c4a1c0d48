// internal/sources/wayback/wayback_test.go
package wayback

import (
	"context"
	"net/http"
	"testing"

	"slugscout/internal/core/domain"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/sources/sourcetest"
	"slugscout/internal/testutil"
)

const cdxBody = `[
 ["original","timestamp"],
 ["https://hotels.cloudbeds.com/reservation/hotel-abc","20210101000000"],
 ["https://hotels.cloudbeds.com/reservation/Hotel%20Two","20220202000000"],
 ["https://hotels.cloudbeds.com/about","20220202000000"],
 ["short"]
]`

func TestConnector_Fetch(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		testutil.AssertEqual(t, r.URL.Path, "/cdx/search/cdx", "path")
		testutil.AssertEqual(t, q.Get("url"), "hotels.cloudbeds.com/reservation/*", "url template")
		testutil.AssertEqual(t, q.Get("output"), "json", "output")
		testutil.AssertEqual(t, q.Get("limit"), "250", "limit")
		testutil.AssertEqual(t, q.Get("fl"), "original,timestamp", "fields")
		testutil.AssertEqual(t, q.Get("collapse"), "urlkey", "collapse")
		testutil.AssertEqual(t, q.Get("filter"), "statuscode:200", "filter")
		testutil.WriteJSON(w, http.StatusOK, cdxBody)
	})

	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), 250)
	defer c.Close()

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
	testutil.AssertNoError(t, err, "fetch")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"hotel-abc", "Hotel Two"}, "header skipped, non-matching dropped")
	testutil.AssertEqual(t, hits[0].Timestamp, "20210101000000", "timestamp")
	testutil.AssertEqual(t, hits[0].ArchiveSource, domain.SourceWayback, "source tag")
	testutil.AssertEqual(t, hits[0].Engine, "cloudbeds", "engine")
	testutil.AssertEqual(t, srv.Hits(), 1, "single request")
}

func TestConnector_Fetch_EmptyAndHeaderOnly(t *testing.T) {
	for _, body := range []string{``, `[]`, `[["original","timestamp"]]`} {
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, body)
		})
		c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), 0)

		hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
		testutil.AssertNoError(t, err, "no error for "+body)
		testutil.AssertEmpty(t, hits, "no hits for "+body)
	}
}

func TestConnector_Fetch_Failures(t *testing.T) {
	t.Run("http error degrades without hits", func(t *testing.T) {
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), 0)

		hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
		testutil.AssertError(t, err, "degraded source")
		testutil.AssertEmpty(t, hits, "no hits")
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, `<html>`)
		})
		c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), 0)

		_, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
		testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "invalid response")
	})
}

func TestConnector_Fetch_NoTemplate(t *testing.T) {
	srv := testutil.NewCountingServer(t, testutil.UnexpectedRequest(t))
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), 0)

	p := domain.MustEnginePattern(domain.PatternSpec{Name: "bare", SlugRegex: `/h/(\d+)`})
	hits, err := c.Fetch(context.Background(), p)
	testutil.AssertNoError(t, err, "no error")
	testutil.AssertEmpty(t, hits, "no hits")
	testutil.AssertEqual(t, srv.Hits(), 0, "no request")
}

func TestFactory(t *testing.T) {
	cfg := sourcetest.Config("http://x.test", nil)
	cfg.Custom = map[string]interface{}{"limit": 0}
	_, err := factory(cfg, logx.NewSilent())
	testutil.AssertError(t, err, "non-positive limit rejected")

	cfg.Custom = map[string]interface{}{"limit": 42}
	conn, err := factory(cfg, logx.NewSilent())
	testutil.AssertNoError(t, err, "valid")
	testutil.AssertEqual(t, conn.(*Connector).limit, 42, "limit applied")
	testutil.AssertEqual(t, conn.Name(), domain.SourceWayback, "name")
}
