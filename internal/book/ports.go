package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
// Absence is reported through the boolean results, never as an error.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id string) (Book, bool, error)
	Create(ctx context.Context, in CreateInput) (Book, error)
	Update(ctx context.Context, id string, p Patch) (Book, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Scope resolves a Service bound to request-scoped storage. The returned
// release func must be called once the request is done with the Service.
type Scope interface {
	Open(ctx context.Context) (*Service, func(), error)
}
