package identity

// Method indicates how the identity was derived.
type Method string

const (
	MethodAPIKey    Method = "api_key"
	MethodBearer    Method = "bearer"
	MethodAnonymous Method = "anonymous"
)

// Identity represents the caller of a gateway request. Principal is the
// value rate-limit state is partitioned on.
type Identity struct {
	// Principal is the unique caller identifier.
	Principal string

	// Method indicates how the identity was derived.
	Method Method
}

// IsAnonymous returns true if this is an anonymous identity.
func (id Identity) IsAnonymous() bool {
	return id.Method == MethodAnonymous || id.Principal == ""
}

// Anonymous returns the default identity for unidentified callers. All
// anonymous callers share one rate-limit bucket.
func Anonymous() Identity {
	return Identity{Principal: "anonymous", Method: MethodAnonymous}
}
