// internal/sources/crtsh/crtsh_test.go
package crtsh

import (
	"context"
	"net/http"
	"testing"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/sources/sourcetest"
	"slugscout/internal/testutil"
)

const rmsRecords = `[
 {"issuer_name":"C=US, O=Let's Encrypt","name_value":"bookings100.rmscloud.com"},
 {"issuer_name":"C=US, O=Let's Encrypt","name_value":"bookings200.rmscloud.com\n*.rmscloud.com"},
 {"issuer_name":"C=US, O=Let's Encrypt","name_value":"*.rmscloud.com"},
 {"issuer_name":"C=US, O=Let's Encrypt","name_value":"rmscloud.com"},
 {"issuer_name":"C=US, O=Let's Encrypt","name_value":"www.rmscloud.com\nBOOKINGS100.rmscloud.com"}
]`

type stubLookup struct {
	names []string
	err   error
	calls int
}

func (s *stubLookup) Names(ctx context.Context, d string) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestConnector_Fetch_HTTPFallback(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("q"), "%.rmscloud.com", "wildcard query")
		testutil.AssertEqual(t, r.URL.Query().Get("output"), "json", "output")
		testutil.WriteJSON(w, http.StatusOK, rmsRecords)
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), nil)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertNoError(t, err, "fetch")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"100", "200"}, "wildcards, bare domain and infra names dropped")
	testutil.AssertEqual(t, hits[0].SourceURL, "https://bookings100.rmscloud.com", "source url")
	testutil.AssertEqual(t, hits[0].ArchiveSource, domain.SourceCrtSh, "source")
	testutil.AssertEqual(t, srv.Hits(), 1, "one request per domain")
}

func TestConnector_Fetch_PostgresPathPreferred(t *testing.T) {
	srv := testutil.NewCountingServer(t, testutil.UnexpectedRequest(t))
	lookup := &stubLookup{names: []string{"bookings42.rmscloud.com", "*.rmscloud.com"}}
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), lookup)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertNoError(t, err, "fetch")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"42"}, "names from postgres")
	testutil.AssertEqual(t, lookup.calls, 1, "lookup used")
	testutil.AssertEqual(t, srv.Hits(), 0, "no HTTP when postgres answers")
}

func TestConnector_Fetch_PostgresFailureFallsBack(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, rmsRecords)
	})
	lookup := &stubLookup{err: errors.ErrConnectionFailed}
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), lookup)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertNoError(t, err, "fallback succeeded")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"100", "200"}, "names from HTTP")
	testutil.AssertEqual(t, srv.Hits(), 1, "HTTP used")
}

func TestConnector_Fetch_UnreachablePostgres(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, `[{"name_value":"bookings7.rmscloud.com"}]`)
	})
	lookup := NewPostgresLookup("postgres://guest@127.0.0.1:1/certwatch?sslmode=disable", 2*time.Second)
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), lookup)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertNoError(t, err, "fallback succeeded")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"7"}, "names from HTTP")
}

func TestConnector_Fetch_RateLimited(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	sleeper := &testutil.SleepRecorder{}
	c := New(sourcetest.Config(srv.URL, sleeper), logx.NewSilent(), nil)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertNoError(t, err, "429 is not an error")
	testutil.AssertEmpty(t, hits, "no hits")
	testutil.AssertEqual(t, srv.Hits(), 1, "no retry")
	testutil.AssertEmpty(t, sleeper.Calls(), "no wait")
}

func TestConnector_Fetch_ServerError(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), nil)

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "rms"))
	testutil.AssertError(t, err, "degraded")
	testutil.AssertEmpty(t, hits, "no hits")
}

func TestConnector_Fetch_NoSubdomainRegex(t *testing.T) {
	srv := testutil.NewCountingServer(t, testutil.UnexpectedRequest(t))
	lookup := &stubLookup{names: []string{"bookings1.rmscloud.com"}}
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), lookup)

	hits, err := c.Fetch(context.Background(), sourcetest.WithoutSubdomainRegex(t, sourcetest.Pattern(t, "rms")))
	testutil.AssertNoError(t, err, "no error")
	testutil.AssertEmpty(t, hits, "domains alone are not enough")
	testutil.AssertEqual(t, lookup.calls, 0, "no lookup")
	testutil.AssertEqual(t, srv.Hits(), 0, "no network call")
}

func TestConnector_Fetch_NoDomains(t *testing.T) {
	srv := testutil.NewCountingServer(t, testutil.UnexpectedRequest(t))
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), nil)

	hits, err := c.Fetch(context.Background(), sourcetest.WithoutDomains(t, sourcetest.Pattern(t, "rms")))
	testutil.AssertNoError(t, err, "no error")
	testutil.AssertEmpty(t, hits, "no hits")
	testutil.AssertEqual(t, srv.Hits(), 0, "no network call")
}

func TestParseNames(t *testing.T) {
	names, err := parseNames([]byte(rmsRecords))
	testutil.AssertNoError(t, err, "parse")
	testutil.AssertEqual(t, names, []string{
		"bookings100.rmscloud.com",
		"bookings200.rmscloud.com",
		"*.rmscloud.com",
		"rmscloud.com",
		"www.rmscloud.com",
	}, "split and deduped case-insensitively")

	names, err = parseNames(nil)
	testutil.AssertNoError(t, err, "empty body")
	testutil.AssertEmpty(t, names, "no names")

	_, err = parseNames([]byte("<html>"))
	testutil.AssertErrorIs(t, err, errors.ErrInvalidResponse, "html body")
}

func TestFactory_UsePostgresToggle(t *testing.T) {
	cfg := sourcetest.Config("http://127.0.0.1", nil)

	conn, err := factory(cfg, logx.NewSilent())
	testutil.AssertNoError(t, err, "default factory")
	testutil.AssertNotNil(t, conn.(*Connector).lookup, "postgres on by default")

	cfg.Custom = map[string]interface{}{"use_postgres": false}
	conn, err = factory(cfg, logx.NewSilent())
	testutil.AssertNoError(t, err, "factory")
	testutil.AssertNil(t, conn.(*Connector).lookup, "postgres disabled")
}
