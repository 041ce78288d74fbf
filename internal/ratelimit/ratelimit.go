// Package ratelimit decides whether a client may make another request in the current window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket refilling requests tokens per window. It is local
// to the process.
type Memory struct {
	requests  int
	window    time.Duration
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(requests int, window time.Duration) *Memory {
	if requests <= 0 {
		requests = 1
	}
	return &Memory{
		requests: requests,
		window:   window,
		entries:  make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	entry, ok := m.entries[key]
	if !ok {
		entry = &memoryEntry{
			limiter: rate.NewLimiter(rate.Every(m.window/time.Duration(m.requests)), m.requests),
		}
		m.entries[key] = entry
	}
	entry.lastSeen = now

	d := Decision{Limit: m.requests}
	if entry.limiter.AllowN(now, 1) {
		d.Allowed = true
		d.Remaining = int(entry.limiter.TokensAt(now))
		return d, nil
	}

	d.RetryAfter = m.window / time.Duration(m.requests)
	return d, nil
}

// sweep drops keys idle for a whole window, at most once per window.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.window {
		return
	}
	for key, entry := range m.entries {
		if now.Sub(entry.lastSeen) >= m.window {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

// WindowCounter counts hits in a fixed window shared across processes.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Redis is a fixed-window limiter over a shared counter. When the counter is
// unavailable it degrades to the in-memory limiter.
type Redis struct {
	counter  WindowCounter
	requests int
	window   time.Duration
	fallback *Memory
	logger   *zap.Logger
}

func NewRedis(counter WindowCounter, requests int, window time.Duration, logger *zap.Logger) *Redis {
	return &Redis{
		counter:  counter,
		requests: requests,
		window:   window,
		fallback: NewMemory(requests, window),
		logger:   logger,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := r.counter.IncrWindow(ctx, "ratelimit:"+key, r.window)
	if err != nil {
		r.logger.Warn("Rate limit counter unavailable, using local limiter", zap.Error(err))
		return r.fallback.Allow(ctx, key)
	}

	d := Decision{Limit: r.requests}
	if count <= int64(r.requests) {
		d.Allowed = true
		d.Remaining = r.requests - int(count)
		return d, nil
	}

	d.RetryAfter = ttl
	return d, nil
}
