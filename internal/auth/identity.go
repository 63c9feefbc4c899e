package auth

import "context"

// Identity is the request-scoped caller identity derived from the bearer
// token. Handlers and services receive it explicitly through the context
// instead of reading ambient session state.
type Identity struct {
	UserID         int64
	Email          string
	Role           string
	OrganizationID *int64
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
