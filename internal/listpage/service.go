package listpage

import (
	"context"

	"github.com/janisto/enseada-console/internal/platform/pagination"
)

// Service is the backend contract a resource must satisfy to be listed.
type Service[T any] interface {
	List(ctx context.Context, q pagination.Query) (pagination.Page[T], error)
	Remove(ctx context.Context, id string) error
}

// Accessor resolves the backend service for a single call. It runs on every call so the
// service may depend on ambient request state such as the caller's credentials.
type Accessor[T any] func(ctx context.Context) (Service[T], error)

// Static returns an Accessor that always yields svc.
func Static[T any](svc Service[T]) Accessor[T] {
	return func(context.Context) (Service[T], error) {
		return svc, nil
	}
}

// IDFunc extracts a stable identifier from a resource. It must be pure.
type IDFunc[T any] func(T) string
