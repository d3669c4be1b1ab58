// Package auth issues and checks the bearer tokens that guard the admin
// contact endpoints.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SubjectAdmin = "admin"
	issuer       = "portfolio-contact"
)

var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns an Authenticator. An empty secret disables the check.
func New(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

// Issue signs an admin token valid for the configured TTL.
func (a *Authenticator) Issue() (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, errors.New("ADMIN_JWT_SECRET is not set")
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{
		Role: SubjectAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   SubjectAdmin,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks an Authorization header value of the form "Bearer <token>".
func (a *Authenticator) Verify(header string) (*Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidToken
	}

	keyFunc := func(*jwt.Token) (interface{}, error) { return a.secret, nil }
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(SubjectAdmin),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
