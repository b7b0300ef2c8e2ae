package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	buf := captureDefault(t)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/roll", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	id := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), "status=201")
	assert.Contains(t, buf.String(), "path=/v1/roll")
}

func TestLogger_KeepsCallerRequestID(t *testing.T) {
	captureDefault(t)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", r.Header.Get(RequestIDHeader))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLogger_RecoversPanic(t *testing.T) {
	buf := captureDefault(t)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("dice fell off the table")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.True(t, strings.Contains(out, "Panic serving request"))
	assert.Contains(t, out, "level=ERROR")
}

func TestLogger_Flushes(t *testing.T) {
	captureDefault(t)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if assert.True(t, ok) {
			_, _ = w.Write([]byte("event: connected\n\n"))
			f.Flush()
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/x", nil))
	assert.True(t, rec.Flushed)
}
