package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/state"
	"github.com/jwebster45206/branch-engine/pkg/storage"
)

func gameStateKey(id uuid.UUID) string {
	return "gamestate:" + id.String()
}

func lockKey(id uuid.UUID) string {
	return "gamelock:" + id.String()
}

func (r *RedisStorage) marshalGameState(id uuid.UUID, gs *state.GameState) ([]byte, error) {
	gs.UpdatedAt = time.Now()
	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal gamestate", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	data, err := r.marshalGameState(id, gs)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, gameStateKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save gamestate", "game_id", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	data, err := r.client.Get(ctx, gameStateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Gamestate not found", "game_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load gamestate", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	gs, err := state.Load(data)
	if err != nil {
		r.logger.Error("Failed to unmarshal gamestate", "game_id", id, "error", err)
		return nil, err
	}
	return gs, nil
}

func (r *RedisStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gameStateKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete gamestate", "game_id", id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}

// CommitCollapse writes the world and the branch in one MULTI/EXEC.
func (r *RedisStorage) CommitCollapse(ctx context.Context, gs *state.GameState, b *branch.QuantumBranch) error {
	branchData, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal branch: %w", err)
	}
	var stateData []byte
	if gs != nil {
		if stateData, err = r.marshalGameState(gs.ID, gs); err != nil {
			return err
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, branchKey(b.GameID, b.ID), branchData, r.ttl)
		pipe.SAdd(ctx, branchIndexKey(b.GameID), b.ID.String())
		pipe.Expire(ctx, branchIndexKey(b.GameID), r.ttl)
		if stateData != nil {
			pipe.Set(ctx, gameStateKey(gs.ID), stateData, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to commit collapse", "game_id", b.GameID, "branch_id", b.ID, "error", err)
		return fmt.Errorf("failed to commit collapse: %w", err)
	}
	return nil
}

// LockGame takes a SET NX lock that expires after ttl. Unlock only deletes
// the key if this caller still owns it.
func (r *RedisStorage) LockGame(ctx context.Context, gameID uuid.UUID, ttl time.Duration) (storage.Unlock, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey(gameID), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to lock game: %w", err)
	}
	if !ok {
		return nil, storage.ErrGameLocked
	}

	return func(ctx context.Context) error {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			owner, err := tx.Get(ctx, lockKey(gameID)).Result()
			if errors.Is(err, redis.Nil) || owner != token {
				return nil
			}
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, lockKey(gameID))
				return nil
			})
			return err
		}, lockKey(gameID))
		if err != nil {
			r.logger.Warn("Failed to release game lock", "game_id", gameID, "error", err)
			return fmt.Errorf("failed to unlock game: %w", err)
		}
		return nil
	}, nil
}
