package auth

import (
	"context"

	"github.com/Dan9191/task-service/internal/models"
)

type contextKey struct{}

// WithIdentity attaches a verified identity to ctx
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the verified identity, if any
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(models.Identity)
	return id, ok
}
