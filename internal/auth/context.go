package auth

import "context"

// Identity is the verified, stable identifier of the calling user — the
// subject claim of a successfully verified bearer token. Its string form is
// the canonical ownership key compared throughout the repository layer.
type Identity string

func (id Identity) String() string {
	return string(id)
}

// contextKey is an unexported type so only this package can read or write
// identity values in a request context. A plain string key would let any
// package that guesses the name shadow the value.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying the verified identity.
// Only the auth middleware should call this in production code; tests use
// it to simulate an authenticated request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the verified identity from the request
// context. Returns ("", false) if the request carries no identity.
//
// Handlers must treat the false case as unauthenticated — the repository is
// never invoked without an identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id != ""
}
