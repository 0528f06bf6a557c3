package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for identity extraction.
var (
	ErrEmptyCredential = errors.New("identity: credential is empty")
	ErrMalformedToken  = errors.New("identity: malformed bearer token")
	ErrMissingSubject  = errors.New("identity: token has no subject claim")
)

// FromAPIKey derives an identity from an API key. The principal is a
// SHA-256 digest prefix of the key, so the raw credential never appears in
// rate-limit state or logs.
func FromAPIKey(key string) (Identity, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Identity{}, ErrEmptyCredential
	}

	sum := sha256.Sum256([]byte(key))
	return Identity{
		Principal: "key-" + hex.EncodeToString(sum[:8]),
		Method:    MethodAPIKey,
	}, nil
}

// FromBearer derives an identity from a bearer token's subject claim. The
// token is parsed without signature verification: the gateway core
// partitions rate-limit state by subject and leaves verification to the
// surrounding deployment.
func FromBearer(token string) (Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Identity{}, ErrEmptyCredential
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, ErrMalformedToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Identity{}, ErrMissingSubject
	}

	return Identity{
		Principal: subject,
		Method:    MethodBearer,
	}, nil
}
