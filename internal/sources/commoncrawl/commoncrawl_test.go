// internal/sources/commoncrawl/commoncrawl_test.go
package commoncrawl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"slugscout/internal/core/domain"
	"slugscout/internal/platform/logx"
	"slugscout/internal/sources/sourcetest"
	"slugscout/internal/testutil"
)

type ccServer struct {
	*testutil.CountingServer
	mu      sync.Mutex
	queried []string
}

// newCCServer sirve un collinfo.json con los ids indicados y responde
// la consulta CDX de cada índice con bodies[id] (un id ausente responde 500).
func newCCServer(t *testing.T, ids []string, bodies map[string]string) *ccServer {
	t.Helper()
	s := &ccServer{}
	s.CountingServer = testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collinfo.json" {
			var parts []string
			for _, id := range ids {
				parts = append(parts, fmt.Sprintf(`{"id":%q,"name":"crawl","cdx-api":"%s/%s-index"}`, id, s.URL, id))
			}
			testutil.WriteJSON(w, http.StatusOK, "["+strings.Join(parts, ",")+"]")
			return
		}

		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "-index")
		s.mu.Lock()
		s.queried = append(s.queried, id)
		s.mu.Unlock()

		testutil.AssertEqual(t, r.URL.Query().Get("output"), "json", "output")
		testutil.AssertEqual(t, r.URL.Query().Get("url"), "hotels.cloudbeds.com/reservation/*", "url")

		body, ok := bodies[id]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if body == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	return s
}

func (s *ccServer) Queried() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queried...)
}

func line(u, ts string) string {
	return fmt.Sprintf(`{"urlkey":"x","timestamp":%q,"url":%q,"status":"200"}`, ts, u)
}

func TestListIndexes(t *testing.T) {
	srv := newCCServer(t, []string{"CC-3", "CC-2", "CC-1"}, nil)
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	idx := c.ListIndexes(context.Background())
	testutil.AssertLen(t, idx, 3, "three indexes")
	testutil.AssertEqual(t, idx[0].ID, "CC-3", "most recent first")
	testutil.AssertEqual(t, idx[0].CDXAPI, srv.URL+"/CC-3-index", "cdx api")
}

func TestListIndexes_FailureIsEmpty(t *testing.T) {
	srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	testutil.AssertEmpty(t, c.ListIndexes(context.Background()), "error status yields empty list")
}

func TestQueryHistorical_SeenAcrossIndexes(t *testing.T) {
	srv := newCCServer(t, []string{"CC-3", "CC-2", "CC-1"}, map[string]string{
		"CC-3": line("https://hotels.cloudbeds.com/reservation/alpha", "20240301") + "\n" +
			line("https://hotels.cloudbeds.com/about", "20240301") + "\n",
		"CC-2": line("https://hotels.cloudbeds.com/reservation/ALPHA", "20240201") + "\n" +
			line("https://hotels.cloudbeds.com/reservation/beta", "20240201") + "\n",
		"CC-1": line("https://hotels.cloudbeds.com/reservation/gamma", "20240101"),
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	hits, err := c.QueryHistorical(context.Background(), sourcetest.Pattern(t, "cloudbeds"), 2)
	testutil.AssertNoError(t, err, "sweep")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"alpha", "beta"}, "later duplicate suppressed, third index not queried")
	testutil.AssertEqual(t, hits[0].Timestamp, "20240301", "first index wins")
	testutil.AssertEqual(t, srv.Queried(), []string{"CC-3", "CC-2"}, "only first n indexes")
}

func TestQueryHistorical_FailingIndexDoesNotAbort(t *testing.T) {
	srv := newCCServer(t, []string{"CC-3", "CC-2", "CC-1", "CC-0"}, map[string]string{
		"CC-3": line("https://hotels.cloudbeds.com/reservation/alpha", "3"),
		// CC-2 ausente: responde 500
		"CC-1": "not json\n{broken",
		"CC-0": line("https://hotels.cloudbeds.com/reservation/delta", "0"),
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	hits, err := c.QueryHistorical(context.Background(), sourcetest.Pattern(t, "cloudbeds"), 10)
	testutil.AssertError(t, err, "failed indexes reported")
	testutil.AssertContains(t, err.Error(), "CC-2", "500 index named")
	testutil.AssertContains(t, err.Error(), "CC-1", "malformed index named")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"alpha", "delta"}, "sweep continued past failures")
	testutil.AssertLen(t, srv.Queried(), 4, "every index tried")
}

func TestQueryHistorical_NotFoundIsEmpty(t *testing.T) {
	srv := newCCServer(t, []string{"CC-1"}, map[string]string{"CC-1": "404"})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	hits, err := c.QueryHistorical(context.Background(), sourcetest.Pattern(t, "cloudbeds"), 1)
	testutil.AssertNoError(t, err, "404 means no captures")
	testutil.AssertEmpty(t, hits, "no hits")
}

func TestQueryLatest_UsesFirstIndexOnly(t *testing.T) {
	srv := newCCServer(t, []string{"CC-NEW", "CC-OLD"}, map[string]string{
		"CC-NEW": line("https://hotels.cloudbeds.com/reservation/new", "2"),
		"CC-OLD": line("https://hotels.cloudbeds.com/reservation/old", "1"),
	})
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{Mode: ModeLatest})

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
	testutil.AssertNoError(t, err, "latest")
	testutil.AssertEqual(t, sourcetest.Slugs(hits), []string{"new"}, "latest only")
	testutil.AssertEqual(t, srv.Queried(), []string{"CC-NEW"}, "one index")
}

func TestFetch_NoIndexesIsEmpty(t *testing.T) {
	srv := newCCServer(t, nil, nil)
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	hits, err := c.Fetch(context.Background(), sourcetest.Pattern(t, "cloudbeds"))
	testutil.AssertNoError(t, err, "no indexes is not an error")
	testutil.AssertEmpty(t, hits, "no hits")
}

func TestFetch_NoTemplate(t *testing.T) {
	srv := testutil.NewCountingServer(t, testutil.UnexpectedRequest(t))
	c := New(sourcetest.Config(srv.URL, nil), logx.NewSilent(), Options{})

	p := domain.MustEnginePattern(domain.PatternSpec{Name: "bare", SlugRegex: `/h/(\d+)`})
	hits, err := c.Fetch(context.Background(), p)
	testutil.AssertNoError(t, err, "no error")
	testutil.AssertEmpty(t, hits, "no hits")
	testutil.AssertEqual(t, srv.Hits(), 0, "no requests")
}

func TestFactory_Validation(t *testing.T) {
	cfg := sourcetest.Config("http://x.test", nil)

	cfg.Custom = map[string]interface{}{"mode": "weekly"}
	_, err := factory(cfg, logx.NewSilent())
	testutil.AssertError(t, err, "bad mode")

	cfg.Custom = map[string]interface{}{"indexes": -1}
	_, err = factory(cfg, logx.NewSilent())
	testutil.AssertError(t, err, "bad index count")

	cfg.Custom = map[string]interface{}{"mode": "latest", "indexes": 5}
	conn, err := factory(cfg, logx.NewSilent())
	testutil.AssertNoError(t, err, "valid")
	testutil.AssertEqual(t, conn.(*Connector).opts.Mode, ModeLatest, "mode")
	testutil.AssertEqual(t, conn.(*Connector).opts.IndexCount, 5, "indexes")
}
