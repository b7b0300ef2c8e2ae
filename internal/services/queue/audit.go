package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/collapse"
)

// DefaultAuditLimit caps each game's audit list.
const DefaultAuditLimit = 500

// AuditRecord is one committed collapse. Narrative keeps its entity markup
// so later tooling can resolve references.
type AuditRecord struct {
	GameID      uuid.UUID          `json:"game_id"`
	BranchID    uuid.UUID          `json:"branch_id"`
	Category    branch.Category    `json:"category"`
	Narrative   string             `json:"raw_narrative"`
	Refs        []branch.EntityRef `json:"entity_refs,omitempty"`
	DC          int                `json:"dc,omitempty"`
	Margin      int                `json:"margin,omitempty"`
	AutoSuccess bool               `json:"auto_success,omitempty"`
	Twist       bool               `json:"twist,omitempty"`
	Applied     int                `json:"applied_deltas"`
	At          time.Time          `json:"at"`
}

// NewAuditRecord builds the record for a committed collapse.
func NewAuditRecord(gameID uuid.UUID, res *collapse.Result) AuditRecord {
	rec := AuditRecord{
		GameID:    gameID,
		BranchID:  res.BranchID,
		Category:  res.Category,
		Narrative: res.RawNarrative,
		Refs:      res.Refs,
		Twist:     res.TwistApplied,
		Applied:   res.Applied,
		At:        time.Now().UTC(),
	}
	if res.Check != nil {
		rec.DC = res.Check.DC
		rec.Margin = res.Check.Margin
		rec.AutoSuccess = res.Check.AutoSuccess
	}
	return rec
}

// AuditLog manages collapse audit lists per game
type AuditLog struct {
	client *Client
	logger *slog.Logger
	limit  int64
}

// NewAuditLog creates a new audit log service
func NewAuditLog(client *Client, logger *slog.Logger) *AuditLog {
	return &AuditLog{
		client: client,
		logger: logger,
		limit:  DefaultAuditLimit,
	}
}

// WithLimit caps the number of records kept per game. Zero or less keeps
// everything.
// Returns the AuditLog for method chaining
func (a *AuditLog) WithLimit(n int) *AuditLog {
	a.limit = int64(n)
	return a
}

func auditKey(gameID uuid.UUID) string {
	return "collapse-audit:" + gameID.String()
}

// Append adds a record to the end of the game's list, trimming the oldest
// entries beyond the limit.
func (a *AuditLog) Append(ctx context.Context, rec AuditRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}
	key := auditKey(rec.GameID)

	_, err = a.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if a.limit > 0 {
			pipe.LTrim(ctx, key, -a.limit, -1)
		}
		return nil
	})
	if err != nil {
		a.logger.Error("Failed to append audit record",
			"error", err,
			"game_id", rec.GameID.String(),
			"branch_id", rec.BranchID.String())
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	a.logger.Debug("Appended audit record",
		"game_id", rec.GameID.String(),
		"category", rec.Category,
		"narrative_preview", truncate(rec.Narrative, 50))
	return nil
}

// Recent returns up to limit of the newest records, oldest first. A limit of
// zero or less returns everything.
func (a *AuditLog) Recent(ctx context.Context, gameID uuid.UUID, limit int) ([]AuditRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := a.client.rdb.LRange(ctx, auditKey(gameID), start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		a.logger.Error("Failed to read audit records", "error", err, "game_id", gameID.String())
		return nil, fmt.Errorf("failed to read audit records: %w", err)
	}

	records := make([]AuditRecord, 0, len(raw))
	for _, item := range raw {
		var rec AuditRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			a.logger.Warn("Skipping corrupt audit record", "game_id", gameID.String(), "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Depth returns the number of records kept for a game
func (a *AuditLog) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	count, err := a.client.rdb.LLen(ctx, auditKey(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get audit depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all records for a game
func (a *AuditLog) Clear(ctx context.Context, gameID uuid.UUID) error {
	if err := a.client.rdb.Del(ctx, auditKey(gameID)).Err(); err != nil {
		a.logger.Error("Failed to clear audit records", "error", err, "game_id", gameID.String())
		return fmt.Errorf("failed to clear audit records: %w", err)
	}
	return nil
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
