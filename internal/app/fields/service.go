package fields

import (
	"context"

	"github.com/agroplot/agroplot/internal/domain"
	"github.com/agroplot/agroplot/internal/observability"
)

// Service manages field records. Reads and subscriptions degrade
// gracefully (empty list / nil / no-op cancel) when the store was
// never initialized or fails; writes propagate their errors.
type Service struct {
	store domain.FieldStore
}

func NewService(store domain.FieldStore) *Service {
	return &Service{store: store}
}

// GetAllFields returns every field, or an empty list on failure.
func (s *Service) GetAllFields(ctx context.Context) []*domain.Field {
	if s.store == nil {
		return nil
	}

	out, err := s.store.ListFields(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list fields", "error", err)
		return nil
	}
	return out
}

// GetFieldByID returns the field, or nil when absent or on failure.
func (s *Service) GetFieldByID(ctx context.Context, id domain.FieldID) *domain.Field {
	if s.store == nil {
		return nil
	}

	field, err := s.store.GetField(ctx, id)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to get field",
			"field_id", id, "error", err)
		return nil
	}
	return field
}

// CreateField stores a new field and returns the store-assigned id.
// The caller-side ID is ignored.
func (s *Service) CreateField(ctx context.Context, field *domain.Field) (domain.FieldID, error) {
	if s.store == nil {
		return "", domain.ErrStoreUnavailable
	}

	log := observability.LoggerFromContext(ctx).With("name", field.Name, "type", field.Kind)

	id, err := s.store.CreateField(ctx, field)
	if err != nil {
		log.Error("failed to create field", "error", err)
		return "", err
	}

	log.Info("field created", "field_id", id)
	return id, nil
}

// UpdateField merges the non-nil patch entries into the stored record.
func (s *Service) UpdateField(ctx context.Context, id domain.FieldID, patch domain.FieldPatch) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}

	if err := s.store.UpdateField(ctx, id, patch); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to update field",
			"field_id", id, "error", err)
		return err
	}
	return nil
}

// DeleteField removes the field. Deleting an absent field is not an
// error.
func (s *Service) DeleteField(ctx context.Context, id domain.FieldID) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}

	if err := s.store.DeleteField(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to delete field",
			"field_id", id, "error", err)
		return err
	}

	observability.LoggerFromContext(ctx).Info("field deleted", "field_id", id)
	return nil
}

// SubscribeToFields watches the whole collection. fn gets the current
// snapshot immediately and again on every change until the returned
// cancel is called. Without a store it returns a no-op cancel.
func (s *Service) SubscribeToFields(ctx context.Context, fn func([]*domain.Field)) domain.CancelFunc {
	if s.store == nil {
		return func() {}
	}

	cancel, err := s.store.WatchFields(ctx, fn)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to subscribe to fields", "error", err)
		return func() {}
	}
	return cancel
}

// SubscribeToField watches a single field; fn receives nil when the
// field does not exist or the watch fails.
func (s *Service) SubscribeToField(ctx context.Context, id domain.FieldID, fn func(*domain.Field)) domain.CancelFunc {
	if s.store == nil {
		return func() {}
	}

	cancel, err := s.store.WatchField(ctx, id, fn)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to subscribe to field",
			"field_id", id, "error", err)
		return func() {}
	}
	return cancel
}
