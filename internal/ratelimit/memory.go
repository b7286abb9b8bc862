package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SweepInterval is how often RunSweeper drops expired windows.
const SweepInterval = 5 * time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps windows in process memory. State is lost on restart
// and not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Check(_ context.Context, identifier, action string, p Policy) (Result, error) {
	now := s.now()
	k := key(identifier, action)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[k]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(p.Window)}
		s.windows[k] = w
		return Result{Success: true, Limit: p.MaxRequests, Remaining: remaining(p.MaxRequests, 1), ResetAt: w.resetAt}, nil
	}

	if w.count >= p.MaxRequests {
		return Result{Success: false, Limit: p.MaxRequests, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	return Result{Success: true, Limit: p.MaxRequests, Remaining: remaining(p.MaxRequests, w.count), ResetAt: w.resetAt}, nil
}

// Sweep removes expired windows and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked windows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
