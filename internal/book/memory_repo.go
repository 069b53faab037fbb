package book

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

type orderKey struct {
	createdAt time.Time
	id        string
}

// newest first, ties broken by id
func lessOrderKey(a, b orderKey) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id < b.id
}

// MemoryRepo keeps books in process. It satisfies the same contract as
// PostgresRepo, including ordering.
type MemoryRepo struct {
	mu    sync.RWMutex
	books map[string]Book
	order *btree.BTreeG[orderKey]
	now   func() time.Time
	newID func() string
}

// MemoryOption configures a MemoryRepo.
type MemoryOption func(*MemoryRepo)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRepo) { r.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(r *MemoryRepo) { r.newID = newID }
}

func NewMemoryRepo(opts ...MemoryOption) *MemoryRepo {
	r := &MemoryRepo{
		books: make(map[string]Book),
		order: btree.NewG(16, lessOrderKey),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepo) List(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Book, 0, r.order.Len())
	r.order.Ascend(func(k orderKey) bool {
		out = append(out, r.books[k.id])
		return true
	})
	return out, nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (Book, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	return b, ok, nil
}

func (r *MemoryRepo) Create(_ context.Context, in CreateInput) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	b := Book{
		ID:            r.newID(),
		Title:         in.Title,
		Author:        in.Author,
		Publisher:     in.Publisher,
		PublishedDate: in.PublishedDate,
		PageCount:     in.PageCount,
		Language:      in.Language,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.books[b.ID] = b
	r.order.ReplaceOrInsert(orderKey{createdAt: b.CreatedAt, id: b.ID})
	return b, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, p Patch) (Book, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return Book{}, false, nil
	}
	if p.IsEmpty() {
		return b, true, nil
	}
	p.Apply(&b)
	b.UpdatedAt = r.now().UTC()
	if b.UpdatedAt.Before(b.CreatedAt) {
		b.UpdatedAt = b.CreatedAt
	}
	r.books[id] = b
	return b, true, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return false, nil
	}
	delete(r.books, id)
	r.order.Delete(orderKey{createdAt: b.CreatedAt, id: b.ID})
	return true, nil
}

// StaticScope hands every request the same Service. Used with MemoryRepo
// and in tests, where there is no per-request connection to acquire.
type StaticScope struct {
	svc *Service
}

func NewStaticScope(repo Repository) *StaticScope {
	return &StaticScope{svc: NewService(repo)}
}

func (s *StaticScope) Open(context.Context) (*Service, func(), error) {
	return s.svc, func() {}, nil
}
