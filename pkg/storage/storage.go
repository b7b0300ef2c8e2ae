// Package storage defines persistence for game worlds, prepared branches
// and character sheets.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/pkg/actor"
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/state"
)

var (
	// ErrPCNotFound is returned when no sheet exists for a PC id.
	ErrPCNotFound = errors.New("PC spec not found")
	// ErrGameLocked is returned when another collapse holds the game lock.
	ErrGameLocked = errors.New("game is locked by another collapse")
)

// Unlock releases a game lock.
type Unlock func(ctx context.Context) error

// Storage defines a unified interface for all storage operations.
// Load methods return (nil, nil) when the record does not exist.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Branch operations
	SaveBranch(ctx context.Context, b *branch.QuantumBranch) error
	LoadBranch(ctx context.Context, gameID, branchID uuid.UUID) (*branch.QuantumBranch, error)
	DeleteBranch(ctx context.Context, gameID, branchID uuid.UUID) error
	ListBranches(ctx context.Context, gameID uuid.UUID) ([]uuid.UUID, error)

	// CommitCollapse persists the mutated world and the collapsed (or
	// aborted) branch together.
	CommitCollapse(ctx context.Context, gs *state.GameState, b *branch.QuantumBranch) error

	// LockGame serializes collapses for one game. It returns ErrGameLocked
	// if the lock is held.
	LockGame(ctx context.Context, gameID uuid.UUID, ttl time.Duration) (Unlock, error)

	// PC operations (filesystem-backed, returns PCSpec not PC)
	// Use actor.NewPCFromSpec to build the full PC from the returned spec
	GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error)
	ListPCs(ctx context.Context) ([]string, error)
}
