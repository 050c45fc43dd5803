package services

import (
	"context"

	"github.com/testforge/uicore/internal/application"
)

type contextKey struct{}

// NewContext returns a context carrying s
func NewContext[T application.Application](ctx context.Context, s *Services[T]) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Services stored by NewContext with the same application type
func FromContext[T application.Application](ctx context.Context) (*Services[T], bool) {
	s, ok := ctx.Value(contextKey{}).(*Services[T])
	return s, ok
}
