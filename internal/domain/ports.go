package domain

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned by write operations when no document
// store handle was ever initialized (e.g. local mode without a backend).
// Read paths degrade to empty/nil instead.
var ErrStoreUnavailable = errors.New("document store not initialized")

// CancelFunc stops a real-time subscription. Safe to call more than once.
type CancelFunc func()

// SessionStore defines chat session persistence. The store assigns the
// id and both timestamps on creation and refreshes UpdatedAt on every
// mutation; whatever the caller put there is ignored. Not-found is a
// nil session with a nil error, never an error value.
type SessionStore interface {
	CreateSession(ctx context.Context, session *ChatSession) (SessionID, error)
	UpdateSessionMessages(ctx context.Context, id SessionID, messages []Message) error
	GetSession(ctx context.Context, id SessionID) (*ChatSession, error)
	ListRecentSessions(ctx context.Context, limit int) ([]*ChatSession, error)
}

// FieldStore defines field record persistence plus push subscriptions.
type FieldStore interface {
	CreateField(ctx context.Context, field *Field) (FieldID, error)
	GetField(ctx context.Context, id FieldID) (*Field, error)
	ListFields(ctx context.Context) ([]*Field, error)
	UpdateField(ctx context.Context, id FieldID, patch FieldPatch) error
	DeleteField(ctx context.Context, id FieldID) error

	// WatchFields invokes fn once with the current snapshot and again on
	// every change until the returned CancelFunc is called. On a
	// subscription error fn receives a nil slice and the watch stops.
	WatchFields(ctx context.Context, fn func([]*Field)) (CancelFunc, error)

	// WatchField is the single-document variant; fn receives nil when
	// the document does not exist or the watch fails.
	WatchField(ctx context.Context, id FieldID, fn func(*Field)) (CancelFunc, error)
}

// ModelInfo is the projection of a provider model the catalog endpoint
// exposes.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName"`
	Description      string   `json:"description"`
	SupportedMethods []string `json:"supportedMethods"`
}

// TextGenerator defines how the gateway talks to the generative-AI
// provider.
type TextGenerator interface {
	// GenerateText returns the full generated text for a prompt. An
	// empty model selects the provider default.
	GenerateText(ctx context.Context, prompt, model string) (string, error)

	// StreamText delivers the generated text as a sequence of chunks.
	// onChunk is called once per chunk, in order; a non-nil return stops
	// the stream and is propagated.
	StreamText(ctx context.Context, prompt, model string, onChunk func(text string) error) error

	// ListModels returns the provider's model catalog.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
