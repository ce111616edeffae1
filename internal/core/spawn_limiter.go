package core

// spawn_limiter.go bounds how many spawns run at once.
//
// Each spawn clears and refills the shared scene, so running many at once
// only produces interleaved placements. Extra requests wait up to maxWait for
// a slot and then fail with ErrTooManySpawns. WaitForDrain lets shutdown wait
// for running spawns to finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySpawns is returned when no spawn slot frees up in time.
var ErrTooManySpawns = errors.New("too many concurrent spawns, please try again later")

// DefaultMaxConcurrentSpawns is the slot count used when none is configured.
const DefaultMaxConcurrentSpawns = 1

// DefaultMaxWaitTime is how long Acquire waits for a slot by default.
const DefaultMaxWaitTime = 30 * time.Second

// SpawnLimiter is a counting semaphore for spawn operations.
type SpawnLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewSpawnLimiter allows at most maxConcurrent spawns at once. Non-positive
// arguments fall back to the defaults.
func NewSpawnLimiter(maxConcurrent int, maxWait time.Duration) *SpawnLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSpawns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &SpawnLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. It returns ctx.Err() if ctx ends first and
// ErrTooManySpawns if maxWait passes. Every successful Acquire must be paired
// with Release.
func (l *SpawnLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.inc(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManySpawns
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *SpawnLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.inc(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *SpawnLimiter) Release() {
	l.inc(-1)
	<-l.slots
}

func (l *SpawnLimiter) inc(d int) {
	l.mu.Lock()
	l.active += d
	l.mu.Unlock()
}

// ActiveCount returns the number of spawns holding a slot.
func (l *SpawnLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *SpawnLimiter) MaxConcurrent() int { return cap(l.slots) }

// Available returns the number of free slots.
func (l *SpawnLimiter) Available() int { return cap(l.slots) - len(l.slots) }

// WaitForDrain blocks until no spawn holds a slot or ctx ends.
func (l *SpawnLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of a SpawnLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *SpawnLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
