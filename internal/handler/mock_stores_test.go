package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/slotify/slotify/internal/queue"
	"github.com/slotify/slotify/internal/repository"
)

// fakeSlotStore is an in-memory SlotStore used by handler tests.
type fakeSlotStore struct {
	mu     sync.Mutex
	slots  map[uint64]repository.Slot
	nextID uint64
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[uint64]repository.Slot)}
}

func (f *fakeSlotStore) Create(_ context.Context, s *repository.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.slots[s.ID] = *s
	return nil
}

func (f *fakeSlotStore) GetByID(_ context.Context, id uint64) (*repository.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.slots[id]; ok {
		out := s
		return &out, nil
	}
	return nil, repository.ErrSlotNotFound
}

func (f *fakeSlotStore) ListAll(_ context.Context) ([]repository.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Slot, 0, len(f.slots))
	for _, s := range f.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSlotStore) ListByWeekday(ctx context.Context, weekday int) ([]repository.Slot, error) {
	all, _ := f.ListAll(ctx)
	out := make([]repository.Slot, 0)
	for _, s := range all {
		if s.DayOfWeek == weekday {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) CountByWeekday(ctx context.Context, weekday int) (int, error) {
	matched, _ := f.ListByWeekday(ctx, weekday)
	return len(matched), nil
}

func (f *fakeSlotStore) DeleteByID(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[id]; !ok {
		return repository.ErrSlotNotFound
	}
	delete(f.slots, id)
	return nil
}

// fakeExceptionStore mirrors the unique (slot_id, exception_date) constraint
// of the real table.
type fakeExceptionStore struct {
	mu         sync.Mutex
	exceptions map[uint64]repository.Exception
	nextID     uint64
}

func newFakeExceptionStore() *fakeExceptionStore {
	return &fakeExceptionStore{exceptions: make(map[uint64]repository.Exception)}
}

func (f *fakeExceptionStore) Upsert(_ context.Context, e *repository.Exception) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ex := range f.exceptions {
		if ex.SlotID == e.SlotID && ex.Date == e.Date {
			e.ID = id
			f.exceptions[id] = *e
			return nil
		}
	}
	f.nextID++
	e.ID = f.nextID
	f.exceptions[e.ID] = *e
	return nil
}

func (f *fakeExceptionStore) ListByDateRange(_ context.Context, from, to string) ([]repository.Exception, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Exception, 0)
	for _, ex := range f.exceptions {
		if ex.Date >= from && ex.Date <= to {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeExceptionStore) ListByDate(ctx context.Context, date string) ([]repository.Exception, error) {
	return f.ListByDateRange(ctx, date, date)
}

func (f *fakeExceptionStore) DeleteByID(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exceptions[id]; !ok {
		return repository.ErrExceptionNotFound
	}
	delete(f.exceptions, id)
	return nil
}

func (f *fakeExceptionStore) DeleteBySlotAndDate(_ context.Context, slotID uint64, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ex := range f.exceptions {
		if ex.SlotID == slotID && ex.Date == date {
			delete(f.exceptions, id)
			return nil
		}
	}
	return repository.ErrExceptionNotFound
}

// fakePublisher records published events on a buffered channel so tests can
// wait for the asynchronous post-write hook.
type fakePublisher struct {
	events chan queue.SlotChangedEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan queue.SlotChangedEvent, 16)}
}

func (f *fakePublisher) PublishSlotChanged(_ context.Context, ev queue.SlotChangedEvent) error {
	f.events <- ev
	return nil
}
