package auth

import (
	"context"

	"github.com/ayush/task-manager/backend/internal/models"
)

// Principal is the verified subject of a request.
type Principal struct {
	ID    string
	Role  models.Role
	Email string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
