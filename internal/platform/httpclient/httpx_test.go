// internal/platform/httpclient/httpx_test.go
package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/testutil"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryBackoff = 5 * time.Millisecond
	cfg.MaxRetryBackoff = 10 * time.Millisecond
	return cfg
}

func TestNew(t *testing.T) {
	logger := logx.NewSilent()

	t.Run("creates client with default config", func(t *testing.T) {
		client := New(DefaultConfig(), logger)

		testutil.AssertNotNil(t, client, "client should not be nil")
		testutil.AssertEqual(t, client.config.Timeout, 60*time.Second, "timeout should match")
		testutil.AssertEqual(t, client.config.MaxRetries, 2, "max retries should match")
		testutil.AssertEqual(t, client.config.UserAgent, "slugscout/1.0", "user agent should match")
	})

	t.Run("applies defaults for zero values", func(t *testing.T) {
		client := New(Config{}, nil)

		testutil.AssertEqual(t, client.config.Timeout, 60*time.Second, "should use default timeout")
		testutil.AssertEqual(t, client.config.RetryBackoff, 1*time.Second, "should use default backoff")
		testutil.AssertEqual(t, client.config.UserAgent, "slugscout/1.0", "should use default user agent")
		testutil.AssertEqual(t, client.config.RateLimitBurst, 1, "should use default burst")
	})

	t.Run("creates rate limiter when configured", func(t *testing.T) {
		client := New(Config{RateLimit: 10, RateLimitBurst: 5}, logger)
		testutil.AssertNotNil(t, client.rateLimiter, "rate limiter should be created")
	})

	t.Run("does not create rate limiter when disabled", func(t *testing.T) {
		client := New(Config{RateLimit: 0}, logger)
		testutil.AssertTrue(t, client.rateLimiter == nil, "rate limiter should not be created")
	})
}

func TestClient_Get(t *testing.T) {
	logger := logx.NewSilent()

	t.Run("successful GET request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			testutil.AssertEqual(t, r.Method, http.MethodGet, "method should be GET")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		client := New(DefaultConfig(), logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "request should succeed")
		testutil.AssertEqual(t, resp.StatusCode, http.StatusOK, "status should be 200")

		body, err := ReadBody(resp)
		testutil.AssertNoError(t, err, "should read body")
		testutil.AssertEqual(t, string(body), `{"status": "ok"}`, "body should match")
	})

	t.Run("sets custom headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			testutil.AssertEqual(t, r.Header.Get("X-Custom"), "test", "custom header should be set")
			testutil.AssertEqual(t, r.Header.Get("User-Agent"), "slugscout/1.0", "user agent should be set")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(DefaultConfig(), logger)

		resp, err := client.Get(context.Background(), server.URL, map[string]string{"X-Custom": "test"})
		testutil.AssertNoError(t, err, "request should succeed")
		resp.Body.Close()
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(fastConfig(), logger)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, server.URL, nil)
		testutil.AssertError(t, err, "should fail on context timeout")
		testutil.AssertTrue(t, errors.IsTimeout(err), "should classify as timeout")
	})
}

func TestClient_Request_BodyNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		testutil.AssertEqual(t, r.Method, http.MethodPost, "method should be POST")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(fastConfig(), logx.NewSilent())

	resp, err := client.Request(context.Background(), http.MethodPost, server.URL, strings.NewReader(`{}`), nil)
	testutil.AssertNoError(t, err, "post with body returns the response")
	resp.Body.Close()
	testutil.AssertEqual(t, resp.StatusCode, http.StatusServiceUnavailable, "status passed through")
	testutil.AssertEqual(t, hits.Load(), int32(1), "requests with a body are not retried")
}

func TestClient_Retry(t *testing.T) {
	logger := logx.NewSilent()

	t.Run("retries on 503 status", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(fastConfig(), logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "should succeed after retry")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusOK, "final status")
		testutil.AssertEqual(t, attempts.Load(), int32(2), "should take two attempts")
	})

	t.Run("hands 429 back without retrying", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := New(fastConfig(), logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "429 is a response, not a transport error")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusTooManyRequests, "status passed through")
		testutil.AssertEqual(t, resp.Header.Get("Retry-After"), "1", "headers preserved")
		testutil.AssertEqual(t, attempts.Load(), int32(1), "no internal retry on 429")
	})

	t.Run("does not retry on 404", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := New(fastConfig(), logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "404 is returned as a response")
		resp.Body.Close()
		testutil.AssertEqual(t, attempts.Load(), int32(1), "should not retry")
	})

	t.Run("returns last gateway response when retries run out", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		cfg := fastConfig()
		cfg.MaxRetries = 2
		client := New(cfg, logger)

		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "final response is handed back")
		resp.Body.Close()
		testutil.AssertEqual(t, resp.StatusCode, http.StatusBadGateway, "final status")
		testutil.AssertEqual(t, attempts.Load(), int32(3), "initial attempt plus two retries")
	})

	t.Run("transport errors exhaust retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		client := New(fastConfig(), logger)

		_, err := client.Get(context.Background(), addr, nil)
		testutil.AssertError(t, err, "closed server should fail")
		testutil.AssertTrue(t, errors.IsConnectionFailed(err), "should classify as connection failure")
	})
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Config{RateLimit: 20, RateLimitBurst: 1}, logx.NewSilent())

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL, nil)
		testutil.AssertNoError(t, err, "request should succeed")
		resp.Body.Close()
	}
	testutil.AssertTrue(t, time.Since(start) >= 80*time.Millisecond, "three requests at 20 rps need ~100ms")
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("Accept"), "application/json", "accept header")
		testutil.AssertEqual(t, r.Header.Get("x-apikey"), "k", "extra header")
		testutil.WriteJSON(w, http.StatusOK, `{"ok":true}`)
	}))
	defer server.Close()

	client := New(fastConfig(), logx.NewSilent())

	resp, err := client.GetJSON(context.Background(), server.URL, map[string]string{"x-apikey": "k"})
	testutil.AssertNoError(t, err, "request should succeed")
	body, err := ReadBody(resp)
	testutil.AssertNoError(t, err, "should read body")
	testutil.AssertEqual(t, string(body), `{"ok":true}`, "body")
}

func TestReadBody(t *testing.T) {
	t.Run("returns error for nil response", func(t *testing.T) {
		_, err := ReadBody(nil)
		testutil.AssertError(t, err, "nil response should error")
	})
}

func TestClient_Close(t *testing.T) {
	client := New(DefaultConfig(), logx.NewSilent())

	testutil.AssertNotNil(t, client.HTTPClient(), "underlying client exposed")
	testutil.AssertNoError(t, client.Close(), "close should not fail")
}

func TestClient_Backoff(t *testing.T) {
	client := New(fastConfig(), logx.NewSilent())

	t.Run("caps at max backoff", func(t *testing.T) {
		start := time.Now()
		testutil.AssertNoError(t, client.backoff(context.Background(), 10), "backoff")
		testutil.AssertTrue(t, time.Since(start) < 200*time.Millisecond, "capped backoff should be short")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		testutil.AssertError(t, client.backoff(ctx, 0), "cancelled backoff")
	})
}
