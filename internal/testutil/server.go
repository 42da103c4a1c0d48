// internal/testutil/server.go
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// CountingServer envuelve httptest.Server contando las requests recibidas.
type CountingServer struct {
	*httptest.Server
	hits atomic.Int64
}

// NewCountingServer arranca un servidor de pruebas que cuenta requests y
// delega en handler. El servidor se cierra con t.Cleanup.
func NewCountingServer(t *testing.T, handler http.HandlerFunc) *CountingServer {
	t.Helper()
	cs := &CountingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

// Hits retorna el número de requests recibidas.
func (cs *CountingServer) Hits() int {
	return int(cs.hits.Load())
}

// WriteJSON escribe body con Content-Type JSON y el status indicado.
func WriteJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// UnexpectedRequest devuelve un handler que falla el test si es invocado.
func UnexpectedRequest(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.String())
		w.WriteHeader(http.StatusInternalServerError)
	}
}
