package queue

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/check"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := NewClient("redis://"+mr.Addr(), logger)
	require.NoError(t, err, "Failed to create queue client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient("://", testLogger())
	assert.Error(t, err)
}

func TestNewAuditRecord(t *testing.T) {
	gameID := uuid.New()
	res := &collapse.Result{
		BranchID:     uuid.New(),
		Category:     branch.CriticalSuccess,
		RawNarrative: "You open [cellar_door:the door].",
		Refs:         []branch.EntityRef{{Key: "cellar_door", Text: "the door"}},
		Check:        &check.Result{DC: 15, Margin: 5},
		Applied:      2,
		TwistApplied: true,
	}

	rec := NewAuditRecord(gameID, res)
	assert.Equal(t, gameID, rec.GameID)
	assert.Equal(t, res.BranchID, rec.BranchID)
	assert.Equal(t, "You open [cellar_door:the door].", rec.Narrative)
	assert.Equal(t, 15, rec.DC)
	assert.Equal(t, 5, rec.Margin)
	assert.True(t, rec.Twist)
	assert.False(t, rec.At.IsZero())
}

func TestAuditLog_AppendAndRecent(t *testing.T) {
	client, _ := setupTestRedis(t)
	log := NewAuditLog(client, testLogger())
	ctx := context.Background()
	gameID := uuid.New()

	for _, c := range []branch.Category{branch.Success, branch.Failure, branch.CriticalFailure} {
		require.NoError(t, log.Append(ctx, AuditRecord{GameID: gameID, BranchID: uuid.New(), Category: c, Narrative: string(c)}))
	}

	depth, err := log.Depth(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	all, err := log.Recent(ctx, gameID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, branch.Success, all[0].Category)

	last, err := log.Recent(ctx, gameID, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, branch.Failure, last[0].Category)
	assert.Equal(t, branch.CriticalFailure, last[1].Category)

	other, err := log.Recent(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, log.Clear(ctx, gameID))
	depth, err = log.Depth(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestAuditLog_LimitTrimsOldest(t *testing.T) {
	client, _ := setupTestRedis(t)
	log := NewAuditLog(client, testLogger()).WithLimit(2)
	ctx := context.Background()
	gameID := uuid.New()

	for _, n := range []string{"one", "two", "three"} {
		require.NoError(t, log.Append(ctx, AuditRecord{GameID: gameID, Narrative: n}))
	}

	recs, err := log.Recent(ctx, gameID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "two", recs[0].Narrative)
	assert.Equal(t, "three", recs[1].Narrative)
}

func TestAuditLog_SkipsCorruptEntries(t *testing.T) {
	client, mr := setupTestRedis(t)
	log := NewAuditLog(client, testLogger())
	ctx := context.Background()
	gameID := uuid.New()

	_, err := mr.Push(auditKey(gameID), "not json")
	require.NoError(t, err)
	require.NoError(t, log.Append(ctx, AuditRecord{GameID: gameID, Narrative: "ok"}))

	recs, err := log.Recent(ctx, gameID, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ok", recs[0].Narrative)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, strings.Repeat("a", 5)+"...", truncate(strings.Repeat("a", 8), 5))
}
