package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultSessionTTL is how long an untouched session is kept
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMaxSessions bounds the number of live sessions
	DefaultMaxSessions = 10000
)

type sessionEntry struct {
	lookup   *WeatherLookup
	lastSeen time.Time
}

// SessionRegistry maps UI session IDs to their WeatherLookup.
// Expired sessions are dropped by Run; when the registry is full the
// least recently seen session makes room for a new one.
type SessionRegistry struct {
	provider    WeatherProvider
	recorder    Recorder
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionRegistry creates a registry whose lookups share provider and recorder
func NewSessionRegistry(provider WeatherProvider, recorder Recorder, ttl time.Duration, maxSessions int) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionRegistry{
		provider:    provider,
		recorder:    recorder,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*sessionEntry),
	}
}

// Acquire returns the lookup for id, creating a fresh session when id is
// unknown, expired or empty. The returned id is the one to hand back to the client.
func (r *SessionRegistry) Acquire(id string) (string, *WeatherLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if e, ok := r.sessions[id]; ok && id != "" {
		if now.Sub(e.lastSeen) <= r.ttl {
			e.lastSeen = now
			return id, e.lookup
		}
		delete(r.sessions, id)
	}

	if len(r.sessions) >= r.maxSessions {
		r.evictLocked(now)
	}
	if len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked()
	}

	id = uuid.NewString()
	e := &sessionEntry{
		lookup:   NewWeatherLookup(r.provider, r.recorder),
		lastSeen: now,
	}
	r.sessions[id] = e
	return id, e.lookup
}

// Evict drops expired sessions and reports how many were removed
func (r *SessionRegistry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(r.now())
}

// Run evicts expired sessions every interval until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// Len reports the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) evictLocked(now time.Time) int {
	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range r.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}
