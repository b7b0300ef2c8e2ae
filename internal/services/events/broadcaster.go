package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeBranchPrepared   EventType = "branch.prepared"
	EventTypeBranchCollapsed  EventType = "branch.collapsed"
	EventTypeBranchAborted    EventType = "branch.aborted"
	EventTypeGameStateUpdated EventType = "game.state_updated"
)

// Event represents a generic event structure
type Event struct {
	Type     EventType      `json:"type"`
	GameID   string         `json:"game_id"`
	BranchID string         `json:"branch_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying one game's events.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishBranchPrepared announces a new branch awaiting collapse.
func (b *Broadcaster) PublishBranchPrepared(ctx context.Context, gameID, branchID uuid.UUID, action string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:     EventTypeBranchPrepared,
		GameID:   gameID.String(),
		BranchID: branchID.String(),
		Data: map[string]any{
			"status": "prepared",
			"action": action,
		},
	})
}

// PublishBranchCollapsed announces the committed outcome. narrative is the
// display text, markup already stripped.
func (b *Broadcaster) PublishBranchCollapsed(ctx context.Context, gameID, branchID uuid.UUID, category, narrative string, applied int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:     EventTypeBranchCollapsed,
		GameID:   gameID.String(),
		BranchID: branchID.String(),
		Data: map[string]any{
			"status":         "collapsed",
			"category":       category,
			"narrative":      narrative,
			"applied_deltas": applied,
		},
	})
}

// PublishBranchAborted announces a branch that can no longer be collapsed.
func (b *Broadcaster) PublishBranchAborted(ctx context.Context, gameID, branchID uuid.UUID, reason string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:     EventTypeBranchAborted,
		GameID:   gameID.String(),
		BranchID: branchID.String(),
		Data: map[string]any{
			"status": "aborted",
			"error":  reason,
		},
	})
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, gameID uuid.UUID, clock, entities int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gameID.String(),
		Data: map[string]any{
			"clock_minutes": clock,
			"entities":      entities,
		},
	})
}

// Subscribe opens a subscription to one game's channel. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(gameID))
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"branch_id", event.BranchID,
	)

	return nil
}
