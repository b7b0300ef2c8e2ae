package handlers

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/branch-engine/internal/services/events"
)

// readEvent returns the next "event:" name and its data line.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestEventsHandler_Stream(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broadcaster := events.NewBroadcaster(rdb, logger)

	mux := http.NewServeMux()
	NewEventsHandler(broadcaster, logger).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gameID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events/"+gameID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, data := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, gameID.String())

	require.NoError(t, broadcaster.PublishBranchCollapsed(ctx, gameID, uuid.New(), "success", "You slip past.", 1))
	name, data = readEvent(t, reader)
	assert.Equal(t, string(events.EventTypeBranchCollapsed), name)
	assert.Contains(t, data, "You slip past.")
}

func TestEventsHandler_BadID(t *testing.T) {
	mux := http.NewServeMux()
	NewEventsHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
