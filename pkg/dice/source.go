package dice

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a random int in [0, n). n > 0.
	Intn(n int) int
}

// NewSource returns a Source seeded with seed. A zero seed uses the current
// time. The returned Source is not safe for concurrent use; give each
// session its own.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// LockedSource wraps a Source with a mutex so it can be shared.
type LockedSource struct {
	mu  sync.Mutex
	src Source
}

// NewLockedSource wraps src for concurrent use.
func NewLockedSource(src Source) *LockedSource {
	return &LockedSource{src: src}
}

func (l *LockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

// ScriptedSource replays a fixed sequence of die faces. Each call to Intn
// consumes the next face and returns face-1, clamped into [0, n). Once the
// script is exhausted it keeps returning the last face.
type ScriptedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// Scripted returns a ScriptedSource for the given faces, in roll order.
func Scripted(faces ...int) *ScriptedSource {
	return &ScriptedSource{faces: faces}
}

func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	face := 1
	if len(s.faces) > 0 {
		idx := s.next
		if idx >= len(s.faces) {
			idx = len(s.faces) - 1
		} else {
			s.next++
		}
		face = s.faces[idx]
	}

	v := face - 1
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

// Consumed returns how many faces have been drawn from the script.
func (s *ScriptedSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
