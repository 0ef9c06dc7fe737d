// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
)

// recordingChannel captures dispatched alerts.
type recordingChannel struct {
	mu     sync.Mutex
	alerts []detection.Alert
}

func (c *recordingChannel) Name() string { return "recording" }

func (c *recordingChannel) Send(_ context.Context, alert *detection.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, *alert)
	return nil
}

func (c *recordingChannel) sent() []detection.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]detection.Alert(nil), c.alerts...)
}

type testEnv struct {
	server  http.Handler
	handler *Handler
	logger  *audit.Logger
	alerts  *detection.Manager
	channel *recordingChannel
}

// newTestEnv wires an in-memory audit logger, an alert manager subscribed
// to it and the full router. Rate limiting is disabled unless mw enables it.
func newTestEnv(t *testing.T, mw *MiddlewareConfig) *testEnv {
	t.Helper()

	logger := audit.NewLogger(audit.NewMemoryStore(1000), nil)
	alerts := detection.NewManager(detection.NewMemoryAlertStore(), logger, nil)
	logger.RegisterAlert("security", alerts.HandleAuditEntry)

	channel := &recordingChannel{}
	alerts.RegisterChannel(channel)

	if mw == nil {
		mw = DefaultMiddlewareConfig()
		mw.RateLimitDisabled = true
	}

	handler := NewHandler(logger, alerts, "test")
	router := NewRouter(handler, NewChiMiddleware(mw, alerts))

	return &testEnv{
		server:  router.Setup(),
		handler: handler,
		logger:  logger,
		alerts:  alerts,
		channel: channel,
	}
}

// do sends a request with an optional JSON body.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors APIResponse with a raw payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) envelope {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body: %s", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v; data: %s", err, env.Data)
	}
}

func loginFailure(user string) map[string]interface{} {
	return map[string]interface{}{
		"userId":   user,
		"action":   "login",
		"resource": "user",
		"result":   "failure",
	}
}
