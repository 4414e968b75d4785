package fields_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agroplot/agroplot/internal/adapters/storage/memory"
	"github.com/agroplot/agroplot/internal/app/fields"
	"github.com/agroplot/agroplot/internal/domain"
)

func newField(name string) *domain.Field {
	return &domain.Field{
		Kind:   domain.KindAgriculture,
		Name:   name,
		Length: 120,
		Width:  80,
		Unit:   domain.UnitHectare,
		Crop:   "wheat",
		Status: "planted",
	}
}

func TestCreateAndGetField(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(memory.NewFieldStore())

	id, err := svc.CreateField(ctx, newField("North field"))
	if err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a store-assigned id")
	}

	got := svc.GetFieldByID(ctx, id)
	if got == nil {
		t.Fatalf("expected field to exist")
	}
	if got.ID != id {
		t.Errorf("expected id %q merged into the record, got %q", id, got.ID)
	}
	if got.Name != "North field" || got.Crop != "wheat" || got.Unit != domain.UnitHectare {
		t.Errorf("expected input attributes preserved, got %+v", got)
	}
}

func TestGetMissingField(t *testing.T) {
	svc := fields.NewService(memory.NewFieldStore())

	if got := svc.GetFieldByID(context.Background(), "missing"); got != nil {
		t.Fatalf("expected nil for a missing field, got %+v", got)
	}
}

func TestUpdateFieldMergesPatch(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(memory.NewFieldStore())

	id, err := svc.CreateField(ctx, newField("South field"))
	if err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}

	crop := "barley"
	ph := 6.8
	if err := svc.UpdateField(ctx, id, domain.FieldPatch{Crop: &crop, PH: &ph}); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}

	got := svc.GetFieldByID(ctx, id)
	if got == nil {
		t.Fatalf("expected field to exist")
	}
	if got.Crop != "barley" {
		t.Errorf("expected patched crop, got %q", got.Crop)
	}
	if got.PH == nil || *got.PH != 6.8 {
		t.Errorf("expected patched pH, got %v", got.PH)
	}
	if got.Name != "South field" || got.Status != "planted" {
		t.Errorf("expected untouched attributes preserved, got %+v", got)
	}
}

func TestDeleteFieldIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(memory.NewFieldStore())

	id, err := svc.CreateField(ctx, newField("East field"))
	if err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}

	if err := svc.DeleteField(ctx, id); err != nil {
		t.Fatalf("DeleteField failed: %v", err)
	}
	if got := svc.GetFieldByID(ctx, id); got != nil {
		t.Fatalf("expected field gone, got %+v", got)
	}
	if err := svc.DeleteField(ctx, id); err != nil {
		t.Fatalf("expected second delete to succeed, got %v", err)
	}
}

func TestSubscribeToFields(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(memory.NewFieldStore())

	var snapshots [][]*domain.Field
	cancel := svc.SubscribeToFields(ctx, func(fs []*domain.Field) {
		snapshots = append(snapshots, fs)
	})

	if len(snapshots) != 1 || len(snapshots[0]) != 0 {
		t.Fatalf("expected an immediate empty snapshot, got %+v", snapshots)
	}

	if _, err := svc.CreateField(ctx, newField("West field")); err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}
	if len(snapshots) != 2 || len(snapshots[1]) != 1 {
		t.Fatalf("expected a snapshot per change, got %d snapshots", len(snapshots))
	}

	cancel()
	if _, err := svc.CreateField(ctx, newField("Far field")); err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("expected no delivery after cancel, got %d snapshots", len(snapshots))
	}
	cancel() // calling again must be safe
}

func TestSubscribeToField(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(memory.NewFieldStore())

	id, err := svc.CreateField(ctx, newField("Orchard"))
	if err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}

	var got []*domain.Field
	cancel := svc.SubscribeToField(ctx, id, func(f *domain.Field) {
		got = append(got, f)
	})
	defer cancel()

	if len(got) != 1 || got[0] == nil || got[0].ID != id {
		t.Fatalf("expected immediate snapshot of the field, got %+v", got)
	}

	status := "harvested"
	if err := svc.UpdateField(ctx, id, domain.FieldPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if len(got) != 2 || got[1].Status != "harvested" {
		t.Fatalf("expected updated snapshot, got %+v", got)
	}

	if err := svc.DeleteField(ctx, id); err != nil {
		t.Fatalf("DeleteField failed: %v", err)
	}
	if len(got) != 3 || got[2] != nil {
		t.Fatalf("expected nil snapshot after delete, got %+v", got)
	}
}

func TestNilStoreDegrades(t *testing.T) {
	ctx := context.Background()
	svc := fields.NewService(nil)

	if got := svc.GetAllFields(ctx); got != nil {
		t.Errorf("expected empty read, got %+v", got)
	}
	if got := svc.GetFieldByID(ctx, "any"); got != nil {
		t.Errorf("expected nil read, got %+v", got)
	}
	if _, err := svc.CreateField(ctx, newField("x")); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable on write, got %v", err)
	}
	if err := svc.DeleteField(ctx, "any"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable on delete, got %v", err)
	}

	cancel := svc.SubscribeToFields(ctx, func([]*domain.Field) {
		t.Errorf("callback must not fire without a store")
	})
	cancel()
}
