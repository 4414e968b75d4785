package firestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agroplot/agroplot/internal/domain"
)

const (
	sessionsCollection = "chat_sessions"
	fieldsCollection   = "fields"
)

// Store wraps a Firestore client as a document store for the
// chat_sessions and fields collections. Document ids are assigned by
// Firestore on creation and merged back into every record returned.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (AGROPLOT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection(sessionsCollection)
}

func (s *Store) sessionDocRef(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) fieldsCol() *firestore.CollectionRef {
	return s.client.Collection(fieldsCollection)
}

func (s *Store) fieldDocRef(id domain.FieldID) *firestore.DocumentRef {
	return s.fieldsCol().Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type messageDoc struct {
	Role      string     `firestore:"role"`
	Content   string     `firestore:"content"`
	Timestamp *time.Time `firestore:"timestamp,omitempty"`
}

type sessionDoc struct {
	Messages []messageDoc `firestore:"messages"`
	// serverTimestamp: Firestore fills these in, the client clock is
	// never trusted.
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp"`
	UserID    string    `firestore:"userId"`
}

func toMessageDocs(msgs []domain.Message) []messageDoc {
	out := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDoc{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func fromMessageDocs(docs []messageDoc) []domain.Message {
	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Message{
			Role:      domain.Role(d.Role),
			Content:   d.Content,
			Timestamp: d.Timestamp,
		})
	}
	return out
}

func sessionFromSnap(snap *firestore.DocumentSnapshot) (*domain.ChatSession, error) {
	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode sessionDoc: %w", err)
	}

	return &domain.ChatSession{
		ID:        domain.SessionID(snap.Ref.ID),
		Messages:  fromMessageDocs(doc.Messages),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		UserID:    domain.UserID(doc.UserID),
	}, nil
}

func fieldFromSnap(snap *firestore.DocumentSnapshot) (*domain.Field, error) {
	var f domain.Field
	if err := snap.DataTo(&f); err != nil {
		return nil, fmt.Errorf("decode field doc: %w", err)
	}
	f.ID = domain.FieldID(snap.Ref.ID)
	return &f, nil
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.ChatSession) (domain.SessionID, error) {
	userID := session.UserID
	if userID == "" {
		userID = domain.AnonymousUser
	}

	doc := sessionDoc{
		Messages: toMessageDocs(session.Messages),
		UserID:   string(userID),
	}

	ref, _, err := s.sessionsCol().Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("firestore CreateSession: %w", err)
	}
	return domain.SessionID(ref.ID), nil
}

func (s *Store) UpdateSessionMessages(ctx context.Context, id domain.SessionID, messages []domain.Message) error {
	_, err := s.sessionDocRef(id).Update(ctx, []firestore.Update{
		{Path: "messages", Value: toMessageDocs(messages)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("firestore UpdateSessionMessages: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	snap, err := s.sessionDocRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}
	return sessionFromSnap(snap)
}

func (s *Store) ListRecentSessions(ctx context.Context, limit int) ([]*domain.ChatSession, error) {
	q := s.sessionsCol().OrderBy("updatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.ChatSession
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListRecentSessions: %w", err)
		}

		session, err := sessionFromSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

// ─────────────────────────────────────────
// FieldStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateField(ctx context.Context, field *domain.Field) (domain.FieldID, error) {
	// field.ID carries the firestore:"-" tag, so the stored document
	// never contains a caller-supplied id.
	ref, _, err := s.fieldsCol().Add(ctx, field)
	if err != nil {
		return "", fmt.Errorf("firestore CreateField: %w", err)
	}
	return domain.FieldID(ref.ID), nil
}

func (s *Store) GetField(ctx context.Context, id domain.FieldID) (*domain.Field, error) {
	snap, err := s.fieldDocRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore GetField: %w", err)
	}
	return fieldFromSnap(snap)
}

func (s *Store) ListFields(ctx context.Context) ([]*domain.Field, error) {
	iter := s.fieldsCol().Documents(ctx)
	defer iter.Stop()

	var out []*domain.Field
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListFields: %w", err)
		}

		field, err := fieldFromSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (s *Store) UpdateField(ctx context.Context, id domain.FieldID, patch domain.FieldPatch) error {
	changes := patch.Changes()
	if len(changes) == 0 {
		return nil
	}

	updates := make([]firestore.Update, 0, len(changes))
	for path, value := range changes {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if _, err := s.fieldDocRef(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("firestore UpdateField: %w", err)
	}
	return nil
}

func (s *Store) DeleteField(ctx context.Context, id domain.FieldID) error {
	// Firestore deletes are idempotent: deleting an absent document is
	// not an error.
	if _, err := s.fieldDocRef(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteField: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// Real-time subscriptions
// ─────────────────────────────────────────

func (s *Store) WatchFields(ctx context.Context, fn func([]*domain.Field)) (domain.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	snapIter := s.fieldsCol().Query.Snapshots(watchCtx)

	go func() {
		defer snapIter.Stop()
		for {
			qsnap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					fn(nil)
				}
				return
			}

			var fields []*domain.Field
			docs := qsnap.Documents
			for {
				snap, err := docs.Next()
				if err != nil {
					if err == iterator.Done {
						break
					}
					fn(nil)
					return
				}
				field, err := fieldFromSnap(snap)
				if err != nil {
					fn(nil)
					return
				}
				fields = append(fields, field)
			}
			fn(fields)
		}
	}()

	return cancelOnce(cancel), nil
}

func (s *Store) WatchField(ctx context.Context, id domain.FieldID, fn func(*domain.Field)) (domain.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	snapIter := s.fieldDocRef(id).Snapshots(watchCtx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					fn(nil)
				}
				return
			}

			if !snap.Exists() {
				fn(nil)
				continue
			}

			field, err := fieldFromSnap(snap)
			if err != nil {
				fn(nil)
				return
			}
			fn(field)
		}
	}()

	return cancelOnce(cancel), nil
}

// cancelOnce makes a CancelFunc safe to call repeatedly.
func cancelOnce(cancel context.CancelFunc) domain.CancelFunc {
	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}
