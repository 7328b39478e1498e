package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what can be read from the access token without verifying it
type TokenClaims struct {
	Opaque    bool // the token is not a JWT
	Subject   string
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Expired reports whether the token carries an expiry in the past
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenClaims decodes the persisted token. The signature is not checked;
// the backend stays the authority on validity. ok is false when Anonymous.
func (s *Store) TokenClaims() (claims TokenClaims, ok bool) {
	token := s.CurrentToken()
	if token == "" {
		return TokenClaims{}, false
	}
	return parseClaims(token), true
}

func parseClaims(token string) TokenClaims {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return TokenClaims{Opaque: true}
	}
	out := TokenClaims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out
}
