package auth

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller extracted from a validated token.
type Identity struct {
	Username string
	Role     string
}

// Authorities lists the roles granted to the identity.
func (i Identity) Authorities() []string {
	if i.Role == "" {
		return []string{}
	}
	return []string{i.Role}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
