package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dalemusser/snipsave/internal/domain/models"
)

// Token format: base64url(payload) + "." + base64url(HMAC-SHA256(payload)).
// The payload is the JSON identity triple produced by the token issuer after
// it has verified the user. The shared secret lives in configuration.

var (
	// ErrMalformedToken is returned when a token does not have the
	// payload.signature shape or fails to decode.
	ErrMalformedToken = errors.New("auth: malformed token")

	// ErrBadSignature is returned when the signature does not match.
	ErrBadSignature = errors.New("auth: signature mismatch")
)

type tokenPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HMACVerifier verifies identity tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier for the given shared secret. Returns nil
// if the secret is empty, which the middleware treats as "reject everything".
func NewHMACVerifier(secret string) *HMACVerifier {
	if secret == "" {
		return nil
	}
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify checks the token signature and extracts the identity triple.
func (v *HMACVerifier) Verify(token string) (models.Identity, error) {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return models.Identity{}, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return models.Identity{}, ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return models.Identity{}, ErrMalformedToken
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return models.Identity{}, ErrBadSignature
	}

	var p tokenPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.Identity{}, ErrMalformedToken
	}
	if p.ID == "" {
		return models.Identity{}, ErrMalformedToken
	}

	return models.Identity{ID: p.ID, Email: p.Email, Name: p.Name}, nil
}

// Sign produces a token for the given identity. The server itself never
// issues tokens in production; this exists for tooling and tests.
func (v *HMACVerifier) Sign(id models.Identity) (string, error) {
	payload, err := json.Marshal(tokenPayload{ID: id.ID, Email: id.Email, Name: id.Name})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)

	return base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
