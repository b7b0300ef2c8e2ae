package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/pkg/actor"
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Records are stored as
// copies so callers cannot mutate them behind the store's back.
type MockStorage struct {
	mu         sync.RWMutex
	gamestates map[uuid.UUID]*state.GameState
	branches   map[uuid.UUID]map[uuid.UUID][]byte
	pcSpecs    map[string]*actor.PCSpec
	locks      map[uuid.UUID]bool
	pingError  error
	commitErr  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gamestates: make(map[uuid.UUID]*state.GameState),
		branches:   make(map[uuid.UUID]map[uuid.UUID][]byte),
		pcSpecs:    make(map[string]*actor.PCSpec),
		locks:      make(map[uuid.UUID]bool),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetCommitError makes CommitCollapse fail with err.
func (m *MockStorage) SetCommitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitErr = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamestates[id] = gs.Clone()
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs, exists := m.gamestates[id]
	if !exists {
		return nil, nil
	}
	return gs.Clone(), nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gamestates, id)
	return nil
}

func (m *MockStorage) saveBranchLocked(b *branch.QuantumBranch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal branch: %w", err)
	}
	game := m.branches[b.GameID]
	if game == nil {
		game = make(map[uuid.UUID][]byte)
		m.branches[b.GameID] = game
	}
	game[b.ID] = data
	return nil
}

func (m *MockStorage) SaveBranch(ctx context.Context, b *branch.QuantumBranch) error {
	if b == nil {
		return errors.New("branch cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveBranchLocked(b)
}

func (m *MockStorage) LoadBranch(ctx context.Context, gameID, branchID uuid.UUID) (*branch.QuantumBranch, error) {
	m.mu.RLock()
	data, ok := m.branches[gameID][branchID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var b branch.QuantumBranch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal branch: %w", err)
	}
	return &b, nil
}

func (m *MockStorage) DeleteBranch(ctx context.Context, gameID, branchID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.branches[gameID], branchID)
	return nil
}

func (m *MockStorage) ListBranches(ctx context.Context, gameID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.branches[gameID]))
	for id := range m.branches[gameID] {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids, nil
}

func (m *MockStorage) CommitCollapse(ctx context.Context, gs *state.GameState, b *branch.QuantumBranch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	if err := m.saveBranchLocked(b); err != nil {
		return err
	}
	if gs != nil {
		m.gamestates[gs.ID] = gs.Clone()
	}
	return nil
}

func (m *MockStorage) LockGame(ctx context.Context, gameID uuid.UUID, ttl time.Duration) (Unlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[gameID] {
		return nil, ErrGameLocked
	}
	m.locks[gameID] = true
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.locks, gameID)
		return nil
	}, nil
}

func (m *MockStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	spec, exists := m.pcSpecs[pcID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPCNotFound, pcID)
	}
	cp := *spec
	return &cp, nil
}

func (m *MockStorage) ListPCs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.pcSpecs))
	for id := range m.pcSpecs {
		result = append(result, id)
	}
	slices.Sort(result)
	return result, nil
}

// AddPCSpec adds a PC spec to the mock storage (for testing)
func (m *MockStorage) AddPCSpec(pcID string, spec *actor.PCSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pcSpecs[pcID] = spec
}
