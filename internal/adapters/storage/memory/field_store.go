package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/agroplot/agroplot/internal/domain"
)

// FieldStore is an in-memory implementation of domain.FieldStore with
// change fan-out, so real-time watches behave like the Firestore ones
// in local mode and tests.
type FieldStore struct {
	mu     sync.RWMutex
	fields map[domain.FieldID]*domain.Field

	nextWatch     int
	listWatchers  map[int]func([]*domain.Field)
	fieldWatchers map[int]fieldWatcher
}

type fieldWatcher struct {
	id domain.FieldID
	fn func(*domain.Field)
}

func NewFieldStore() *FieldStore {
	return &FieldStore{
		fields:        make(map[domain.FieldID]*domain.Field),
		listWatchers:  make(map[int]func([]*domain.Field)),
		fieldWatchers: make(map[int]fieldWatcher),
	}
}

func (s *FieldStore) CreateField(ctx context.Context, field *domain.Field) (domain.FieldID, error) {
	s.mu.Lock()

	id := domain.FieldID(uuid.NewString())
	f := *field
	f.ID = id
	s.fields[id] = &f

	s.mu.Unlock()
	s.notify(id)
	return id, nil
}

func (s *FieldStore) GetField(ctx context.Context, id domain.FieldID) (*domain.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fields[id]
	if !ok {
		return nil, nil
	}
	c := *f
	return &c, nil
}

func (s *FieldStore) ListFields(ctx context.Context) ([]*domain.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *FieldStore) UpdateField(ctx context.Context, id domain.FieldID, patch domain.FieldPatch) error {
	s.mu.Lock()

	f, ok := s.fields[id]
	if !ok {
		s.mu.Unlock()
		return errors.New("field not found")
	}
	applyPatch(f, patch)

	s.mu.Unlock()
	s.notify(id)
	return nil
}

func (s *FieldStore) DeleteField(ctx context.Context, id domain.FieldID) error {
	s.mu.Lock()
	// Deleting an absent field is not an error, matching Firestore.
	delete(s.fields, id)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *FieldStore) WatchFields(ctx context.Context, fn func([]*domain.Field)) (domain.CancelFunc, error) {
	s.mu.Lock()
	key := s.nextWatch
	s.nextWatch++
	s.listWatchers[key] = fn
	initial := s.snapshotLocked()
	s.mu.Unlock()

	// Initial snapshot is delivered immediately, like Firestore's
	// first onSnapshot callback.
	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listWatchers, key)
			s.mu.Unlock()
		})
	}, nil
}

func (s *FieldStore) WatchField(ctx context.Context, id domain.FieldID, fn func(*domain.Field)) (domain.CancelFunc, error) {
	s.mu.Lock()
	key := s.nextWatch
	s.nextWatch++
	s.fieldWatchers[key] = fieldWatcher{id: id, fn: fn}
	initial := s.copyLocked(id)
	s.mu.Unlock()

	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fieldWatchers, key)
			s.mu.Unlock()
		})
	}, nil
}

func (s *FieldStore) notify(changed domain.FieldID) {
	s.mu.RLock()
	snapshot := s.snapshotLocked()
	listFns := make([]func([]*domain.Field), 0, len(s.listWatchers))
	for _, fn := range s.listWatchers {
		listFns = append(listFns, fn)
	}

	type delivery struct {
		fn func(*domain.Field)
		f  *domain.Field
	}
	var fieldFns []delivery
	for _, w := range s.fieldWatchers {
		if w.id == changed {
			fieldFns = append(fieldFns, delivery{fn: w.fn, f: s.copyLocked(changed)})
		}
	}
	s.mu.RUnlock()

	for _, fn := range listFns {
		fn(snapshot)
	}
	for _, d := range fieldFns {
		d.fn(d.f)
	}
}

func (s *FieldStore) snapshotLocked() []*domain.Field {
	out := make([]*domain.Field, 0, len(s.fields))
	for _, f := range s.fields {
		c := *f
		out = append(out, &c)
	}
	return out
}

func (s *FieldStore) copyLocked(id domain.FieldID) *domain.Field {
	f, ok := s.fields[id]
	if !ok {
		return nil
	}
	c := *f
	return &c
}

func applyPatch(f *domain.Field, p domain.FieldPatch) {
	assign(&f.Kind, p.Kind)
	assign(&f.Name, p.Name)
	assign(&f.Length, p.Length)
	assign(&f.Width, p.Width)
	assign(&f.Unit, p.Unit)
	assign(&f.Crop, p.Crop)
	assign(&f.Status, p.Status)

	assign(&f.PlantedDate, p.PlantedDate)
	assign(&f.ExpectedHarvest, p.ExpectedHarvest)
	assign(&f.SoilType, p.SoilType)
	assign(&f.Stoniness, p.Stoniness)
	assign(&f.Drainage, p.Drainage)
	assign(&f.Irrigation, p.Irrigation)
	assign(&f.Notes, p.Notes)

	assign(&f.Address, p.Address)
	assign(&f.Street, p.Street)
	assign(&f.City, p.City)
	assign(&f.State, p.State)
	assign(&f.PostalCode, p.PostalCode)
	assign(&f.Country, p.Country)

	if p.PH != nil {
		v := *p.PH
		f.PH = &v
	}
	if p.Lat != nil {
		v := *p.Lat
		f.Lat = &v
	}
	if p.Lng != nil {
		v := *p.Lng
		f.Lng = &v
	}
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
