package identity

import "context"

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a new context with the given identity attached.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext retrieves the identity from the context.
// Returns the anonymous identity if none is present.
func FromContext(ctx context.Context) Identity {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Anonymous()
	}
	return id
}

// PrincipalFromContext retrieves the principal from the context.
func PrincipalFromContext(ctx context.Context) string {
	return FromContext(ctx).Principal
}
