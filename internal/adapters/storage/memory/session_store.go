package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agroplot/agroplot/internal/domain"
)

// SessionStore is an in-memory implementation of domain.SessionStore.
// It is NOT persistent and is only suitable for local mode and tests.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.ChatSession
	lastTS   time.Time
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.ChatSession),
		now:      time.Now,
	}
}

// serverNow emulates Firestore's server-assigned timestamps: strictly
// increasing across writes even when the wall clock does not move.
func (s *SessionStore) serverNow() time.Time {
	t := s.now()
	if !t.After(s.lastTS) {
		t = s.lastTS.Add(time.Nanosecond)
	}
	s.lastTS = t
	return t
}

func (s *SessionStore) CreateSession(ctx context.Context, session *domain.ChatSession) (domain.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := session.UserID
	if userID == "" {
		userID = domain.AnonymousUser
	}

	now := s.serverNow()
	id := domain.SessionID(uuid.NewString())

	s.sessions[id] = &domain.ChatSession{
		ID:        id,
		Messages:  append([]domain.Message(nil), session.Messages...),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}
	return id, nil
}

func (s *SessionStore) UpdateSessionMessages(ctx context.Context, id domain.SessionID, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return errors.New("session not found")
	}

	sess.Messages = append([]domain.Message(nil), messages...)
	sess.UpdatedAt = s.serverNow()
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}

	c := *sess
	c.Messages = append([]domain.Message(nil), sess.Messages...)
	return &c, nil
}

func (s *SessionStore) ListRecentSessions(ctx context.Context, limit int) ([]*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		c := *sess
		c.Messages = append([]domain.Message(nil), sess.Messages...)
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
