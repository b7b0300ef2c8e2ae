package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/branch-engine/pkg/branch"
)

func branchKey(gameID, branchID uuid.UUID) string {
	return fmt.Sprintf("branch:%s:%s", gameID, branchID)
}

// branchIndexKey is the set of branch ids kept for a game.
func branchIndexKey(gameID uuid.UUID) string {
	return "branches:" + gameID.String()
}

func (r *RedisStorage) SaveBranch(ctx context.Context, b *branch.QuantumBranch) error {
	if b == nil {
		return errors.New("branch cannot be nil")
	}
	data, err := json.Marshal(b)
	if err != nil {
		r.logger.Error("Failed to marshal branch", "branch_id", b.ID, "error", err)
		return fmt.Errorf("failed to marshal branch: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, branchKey(b.GameID, b.ID), data, r.ttl)
		pipe.SAdd(ctx, branchIndexKey(b.GameID), b.ID.String())
		pipe.Expire(ctx, branchIndexKey(b.GameID), r.ttl)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save branch", "game_id", b.GameID, "branch_id", b.ID, "error", err)
		return fmt.Errorf("failed to save branch: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadBranch(ctx context.Context, gameID, branchID uuid.UUID) (*branch.QuantumBranch, error) {
	data, err := r.client.Get(ctx, branchKey(gameID, branchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load branch", "game_id", gameID, "branch_id", branchID, "error", err)
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}

	var b branch.QuantumBranch
	if err := json.Unmarshal(data, &b); err != nil {
		r.logger.Error("Failed to unmarshal branch", "branch_id", branchID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal branch: %w", err)
	}
	return &b, nil
}

func (r *RedisStorage) DeleteBranch(ctx context.Context, gameID, branchID uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, branchKey(gameID, branchID))
		pipe.SRem(ctx, branchIndexKey(gameID), branchID.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete branch", "game_id", gameID, "branch_id", branchID, "error", err)
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// ListBranches returns the ids of the game's stored branches, dropping
// index entries whose branch has expired.
func (r *RedisStorage) ListBranches(ctx context.Context, gameID uuid.UUID) ([]uuid.UUID, error) {
	members, err := r.client.SMembers(ctx, branchIndexKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			r.logger.Warn("Invalid branch id in index", "game_id", gameID, "member", m)
			continue
		}
		n, err := r.client.Exists(ctx, branchKey(gameID, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		if n == 0 {
			r.client.SRem(ctx, branchIndexKey(gameID), m)
			continue
		}
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func sortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
}
