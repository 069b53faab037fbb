package book

import (
	"context"
	"strings"

	"bookcatalog/internal/apperr"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every stored book.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Create validates in and persists a new book.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	if err := in.validate(); err != nil {
		return Book{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	return s.repo.Create(ctx, in)
}

// Get returns the book with the given id or a not-found error.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	b, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, notFound(id)
	}
	return b, nil
}

// Update applies p to an existing book.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Book{}, err
	}
	if err := p.validate(); err != nil {
		return Book{}, err
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}

	b, ok, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Book{}, err
	}
	// deleted concurrently after the existence check
	if !ok {
		return Book{}, notFound(id)
	}
	return b, nil
}

// Delete removes an existing book.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

func notFound(id string) error {
	return apperr.NotFound("book %s not found", id)
}
