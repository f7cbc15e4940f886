package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// resumeClaims is the payload of a resume token: just enough to let a
// listener prove it previously owned a session id without the server
// keeping per-listener secrets.
type resumeClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies resume tokens (§4.8's "authorisation
// token" a listener presents alongside a prior session id).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

func (t *TokenIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := resumeClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", ibukierr.Wrap(ibukierr.KindUnauthorized, "signing resume token", err)
	}
	return signed, nil
}

// Verify returns the session id embedded in a resume token, failing with
// Unauthorized if the signature or expiry is invalid.
func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &resumeClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ibukierr.Wrap(ibukierr.KindUnauthorized, "resume token invalid", err)
	}
	return claims.SessionID, nil
}
