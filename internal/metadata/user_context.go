package metadata

import "context"

// UserContext identifies the signed-in admin on whose behalf an action runs.
type UserContext struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ctxKey int

const (
	resourceKey ctxKey = iota
	userKey
)

// WithResource attaches the resource an action was invoked on. Action
// handlers receive only an id and a Database; built-in handlers that need
// column metadata read it back with ResourceFromContext.
func WithResource(ctx context.Context, r *ResourceDefinition) context.Context {
	return context.WithValue(ctx, resourceKey, r)
}

func ResourceFromContext(ctx context.Context) (*ResourceDefinition, bool) {
	r, ok := ctx.Value(resourceKey).(*ResourceDefinition)
	return r, ok && r != nil
}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the admin attached by WithUser, or nil.
func UserFromContext(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey).(*UserContext)
	return u
}
