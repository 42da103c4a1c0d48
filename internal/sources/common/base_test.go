// internal/sources/common/base_test.go
package common

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/resilience"
	"slugscout/internal/testutil"
)

func newTestBase(t *testing.T, srvURL string, sleeper *testutil.SleepRecorder) *BaseConnector {
	t.Helper()
	cfg := ports.DefaultConnectorConfig()
	cfg.BaseURL = srvURL + "/"
	cfg.PageDelay = -1
	cfg.Retries = 0
	cfg.Sleep = sleeper.Sleep
	return NewBaseConnector(cfg, BaseConfig{
		Name:             domain.SourceURLScan,
		DefaultBaseURL:   "https://urlscan.io",
		DefaultPageDelay: time.Second,
	}, logx.NewSilent())
}

func cloudbeds(t *testing.T) domain.EnginePattern {
	t.Helper()
	return domain.MustEnginePattern(domain.PatternSpec{
		Name:      "cloudbeds",
		SlugRegex: `cloudbeds\.com/reservation/([^/?#&]+)`,
		Domains:   []string{"cloudbeds.com"},
	})
}

func TestNewBaseConnector_Defaults(t *testing.T) {
	b := NewBaseConnector(ports.DefaultConnectorConfig(), BaseConfig{
		Name:           domain.SourceWayback,
		DefaultBaseURL: "https://web.archive.org",
	}, nil)
	defer b.Close()

	testutil.AssertEqual(t, b.Name(), domain.SourceWayback, "name")
	testutil.AssertEqual(t, b.BaseURL(), "https://web.archive.org", "default base url")
	testutil.AssertEqual(t, b.APIKey(), "", "no key")
}

func TestBaseConnector_TrimsBaseURLAndKey(t *testing.T) {
	cfg := ports.DefaultConnectorConfig()
	cfg.BaseURL = "http://mirror.test/"
	cfg.APIKey = "  k  "
	b := NewBaseConnector(cfg, BaseConfig{Name: domain.SourceVirusTotal}, nil)

	testutil.AssertEqual(t, b.BaseURL(), "http://mirror.test", "trailing slash trimmed")
	testutil.AssertEqual(t, b.APIKey(), "k", "key trimmed")
}

func TestBaseConnector_GetWithPolicy(t *testing.T) {
	t.Run("retries the same url honoring retry-after", func(t *testing.T) {
		calls := 0
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			testutil.WriteJSON(w, http.StatusOK, `{"results":[]}`)
		})
		sleeper := &testutil.SleepRecorder{}
		b := newTestBase(t, srv.URL, sleeper)

		policy := resilience.Policy{MaxAttempts: 5, BaseDelay: 5 * time.Second, HonorRetryAfter: true, Scope: resilience.ScopeDomain}
		resp, throttled, err := b.GetWithPolicy(context.Background(), srv.URL+"/x", nil, policy)

		testutil.AssertNoError(t, err, "no error")
		testutil.AssertFalse(t, throttled, "not throttled after retry")
		testutil.AssertEqual(t, resp.Status, http.StatusOK, "status")
		testutil.AssertEqual(t, sleeper.Calls(), []time.Duration{2 * time.Second}, "slept retry-after")
		testutil.AssertEqual(t, srv.Hits(), 2, "two requests")
	})

	t.Run("give up policy reports throttled without sleeping", func(t *testing.T) {
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		sleeper := &testutil.SleepRecorder{}
		b := newTestBase(t, srv.URL, sleeper)

		resp, throttled, err := b.GetWithPolicy(context.Background(), srv.URL, nil, resilience.GiveUp(resilience.ScopeDomain))
		testutil.AssertNoError(t, err, "throttling is not an error")
		testutil.AssertTrue(t, throttled, "throttled")
		testutil.AssertTrue(t, resp == nil, "no response")
		testutil.AssertEmpty(t, sleeper.Calls(), "no sleep")
		testutil.AssertEqual(t, srv.Hits(), 1, "single request")
	})

	t.Run("other statuses pass through", func(t *testing.T) {
		srv := testutil.NewCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		b := newTestBase(t, srv.URL, &testutil.SleepRecorder{})

		resp, throttled, err := b.GetWithPolicy(context.Background(), srv.URL, nil, resilience.GiveUp(resilience.ScopeDomain))
		testutil.AssertNoError(t, err, "no transport error")
		testutil.AssertFalse(t, throttled, "not throttled")
		testutil.AssertErrorIs(t, b.CheckOK(resp), errors.ErrNotFound, "404 maps to not found")
	})
}

func TestBaseConnector_ExtractHit(t *testing.T) {
	b := NewBaseConnector(ports.DefaultConnectorConfig(), BaseConfig{Name: domain.SourceArquivo}, nil)
	p := cloudbeds(t)

	hit, ok := b.ExtractHit(p, "https://hotels.cloudbeds.com/reservation/abc", "20230101120000")
	testutil.AssertTrue(t, ok, "match")
	testutil.AssertEqual(t, hit, domain.DiscoveredSlug{
		Engine:        "cloudbeds",
		Slug:          "abc",
		SourceURL:     "https://hotels.cloudbeds.com/reservation/abc",
		ArchiveSource: domain.SourceArquivo,
		Timestamp:     "20230101120000",
	}, "hit")

	_, ok = b.ExtractHit(p, "https://cloudbeds.com/other", "")
	testutil.AssertFalse(t, ok, "no match")
}

func TestBaseConnector_SkipWithoutDomains(t *testing.T) {
	b := NewBaseConnector(ports.DefaultConnectorConfig(), BaseConfig{Name: domain.SourceAlienVault}, nil)

	noDomains := domain.MustEnginePattern(domain.PatternSpec{Name: "x", SlugRegex: `/p/(\d+)`})
	testutil.AssertTrue(t, b.SkipWithoutDomains(noDomains), "skip")
	testutil.AssertFalse(t, b.SkipWithoutDomains(cloudbeds(t)), "has domains")
}

func TestScanLines(t *testing.T) {
	var got []string
	err := ScanLines(strings.NewReader("{\"a\":1}\n\n  \n{\"b\":2}\n"), func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	testutil.AssertNoError(t, err, "scan")
	testutil.AssertEqual(t, got, []string{`{"a":1}`, `{"b":2}`}, "blank lines skipped")

	stop := errors.New("stop")
	err = ScanLines(strings.NewReader("a\nb\n"), func([]byte) error { return stop })
	testutil.AssertErrorIs(t, err, stop, "handler error stops scan")
}

func TestBaseConnector_PaceDisabled(t *testing.T) {
	b := newTestBase(t, "http://unused.test", &testutil.SleepRecorder{})
	start := time.Now()
	for i := 0; i < 5; i++ {
		testutil.AssertNoError(t, b.Pace(context.Background()), "pace")
	}
	testutil.AssertTrue(t, time.Since(start) < 100*time.Millisecond, "negative page delay disables pacing")
}

func TestBaseConnector_SkipWithoutKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewWithWriter(&buf, logx.LevelDebug)

	b := NewBaseConnector(ports.DefaultConnectorConfig(), BaseConfig{Name: domain.SourceVirusTotal}, logger)
	testutil.AssertTrue(t, b.SkipWithoutKey(), "no key skips")
	testutil.AssertTrue(t, b.SkipWithoutKey(), "still skips")

	out := buf.String()
	testutil.AssertEqual(t, strings.Count(out, errors.ErrMissingCredential.Error()), 1, "warned once")
	testutil.AssertContains(t, out, `"level":"warn"`, "warn level")
	testutil.AssertContains(t, out, `"source":"virustotal"`, "source scoped")

	cfg := ports.DefaultConnectorConfig()
	cfg.APIKey = " key "
	keyed := NewBaseConnector(cfg, BaseConfig{Name: domain.SourceVirusTotal}, logger)
	testutil.AssertFalse(t, keyed.SkipWithoutKey(), "key present")
}
