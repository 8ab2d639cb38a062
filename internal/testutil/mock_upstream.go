// Package testutil provides testing utilities for the market proxy.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockUpstream is a configurable fake provider server. Tests register
// canned JSON responses per path and assert on the number of upstream
// calls the proxy actually made.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests map[string]int
}

// NewMockUpstream creates a mock provider server.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		handler := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if handler == nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not configured"}`))
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// RespondJSON registers a static JSON body for a path.
func (m *MockUpstream) RespondJSON(path, body string) {
	m.Respond(path, http.StatusOK, body)
}

// Respond registers a static response with an explicit status for a path.
func (m *MockUpstream) Respond(path string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// RequestCount returns the number of requests seen for a path.
func (m *MockUpstream) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}
