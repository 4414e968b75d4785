package chathistory

import (
	"context"

	"github.com/agroplot/agroplot/internal/domain"
	"github.com/agroplot/agroplot/internal/observability"
)

// DefaultRecentLimit bounds ListRecentSessions when the caller passes
// no limit.
const DefaultRecentLimit = 10

// Service persists chat histories. A session is an ordered message
// list; updates replace the whole list so ordering stays consistent,
// there is no concurrent-edit merge.
type Service struct {
	store domain.SessionStore
}

// NewService builds the service. store may be nil when no backend was
// initialized; reads then degrade and writes fail with
// domain.ErrStoreUnavailable.
func NewService(store domain.SessionStore) *Service {
	return &Service{store: store}
}

// CreateSession stores a new session with the given messages. The
// store assigns the id and both timestamps; userID defaults to the
// anonymous sentinel.
func (s *Service) CreateSession(ctx context.Context, messages []domain.Message, userID domain.UserID) (domain.SessionID, error) {
	if s.store == nil {
		return "", domain.ErrStoreUnavailable
	}

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	id, err := s.store.CreateSession(ctx, &domain.ChatSession{
		Messages: messages,
		UserID:   userID,
	})
	if err != nil {
		log.Error("failed to create chat session", "error", err)
		return "", err
	}

	log.Info("chat session created", "session_id", id, "message_count", len(messages))
	return id, nil
}

// UpdateSession replaces the session's message list and refreshes its
// update timestamp. CreatedAt is never touched.
func (s *Service) UpdateSession(ctx context.Context, id domain.SessionID, messages []domain.Message) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}

	log := observability.LoggerFromContext(ctx).With("session_id", id)

	if err := s.store.UpdateSessionMessages(ctx, id, messages); err != nil {
		log.Error("failed to update chat session", "error", err)
		return err
	}

	log.Info("chat session updated", "message_count", len(messages))
	return nil
}

// GetSession returns the session, or nil when it does not exist. Read
// failures are logged and degrade to nil rather than propagating.
func (s *Service) GetSession(ctx context.Context, id domain.SessionID) *domain.ChatSession {
	if s.store == nil {
		return nil
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to get chat session",
			"session_id", id, "error", err)
		return nil
	}
	return session
}

// ListRecentSessions returns up to limit sessions ordered by update
// timestamp, newest first. limit <= 0 selects DefaultRecentLimit.
// Failures degrade to an empty list.
func (s *Service) ListRecentSessions(ctx context.Context, limit int) []*domain.ChatSession {
	if s.store == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	sessions, err := s.store.ListRecentSessions(ctx, limit)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list chat sessions",
			"limit", limit, "error", err)
		return nil
	}
	return sessions
}

// SaveHistory creates a session when sessionID is empty and updates it
// otherwise, returning the effective session id. This is the single
// entry point the web client calls after every exchange.
func (s *Service) SaveHistory(ctx context.Context, messages []domain.Message, sessionID domain.SessionID) (domain.SessionID, error) {
	if sessionID != "" {
		if err := s.UpdateSession(ctx, sessionID, messages); err != nil {
			return "", err
		}
		return sessionID, nil
	}
	return s.CreateSession(ctx, messages, domain.AnonymousUser)
}
