package auth

// Identity is the caller identity derived from a verified bearer token. It
// lives only in request-scoped storage; the gateway has no user store of its
// own.
type Identity struct {
	// ID is the stable user identifier (the token's subject claim).
	ID       string
	Audience string
	Role     string
	Email    string
}
