package httpapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

//SessionStore tracks operator login sessions by key
type SessionStore interface {
	//Create starts a session for the Operator and returns its key
	Create(operatorID int64) (key string, err error)

	//Check returns the live Session for key, or nil if the key is unknown, malformed, or expired
	Check(key string) (*Session, error)
}

//Session is an operator login session
type Session struct {
	OperatorID int64
	Created    time.Time
	Expires    time.Time
}

//MemorySessionStore is a SessionStore kept in process memory. Sessions slide:
//every successful Check pushes Expires out by the store's duration.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	duration time.Duration
	log      *slog.Logger
}

//NewMemorySessionStore returns a MemorySessionStore whose sessions last duration after their last use.
//Expired sessions are swept every interval until ctx is done.
func NewMemorySessionStore(ctx context.Context, duration, interval time.Duration, log *slog.Logger) *MemorySessionStore {
	m := &MemorySessionStore{
		sessions: make(map[uuid.UUID]*Session),
		duration: duration,
		log:      log,
	}

	if interval > 0 {
		go m.sweep(ctx, interval)
	}

	return m
}

func (m *MemorySessionStore) sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Expire(now); n > 0 {
				m.log.Debug("expired operator sessions", "count", n)
			}
		}
	}
}

//Expire removes every session that expired before now and returns how many were removed
func (m *MemorySessionStore) Expire(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, s := range m.sessions {
		if s.Expires.Before(now) {
			delete(m.sessions, key)
			n++
		}
	}
	return n
}

//Create starts a session keyed by a random UUID. err is always nil.
func (m *MemorySessionStore) Create(operatorID int64) (string, error) {
	key := uuid.New()
	now := time.Now()

	m.mu.Lock()
	m.sessions[key] = &Session{OperatorID: operatorID, Created: now, Expires: now.Add(m.duration)}
	m.mu.Unlock()

	m.log.Debug("operator session created", "operator", operatorID)
	return key.String(), nil
}

//Check returns a copy of the live Session for key and extends it. err is always nil.
func (m *MemorySessionStore) Check(key string) (*Session, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}

	now := time.Now()
	if !s.Expires.After(now) {
		delete(m.sessions, id)
		return nil, nil
	}

	s.Expires = now.Add(m.duration)
	cp := *s
	return &cp, nil
}
