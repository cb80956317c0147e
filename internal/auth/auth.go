// Package auth resolves the caller's session from a bearer token.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession means the request carried no usable credentials.
var ErrNoSession = errors.New("auth: no valid session")

// Session is the normalized caller identity handed to feature handlers.
type Session struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Resolver yields the session for an inbound request, or ErrNoSession.
type Resolver interface {
	Resolve(r *http.Request) (Session, error)
}

// Claims is the token payload. The user id travels in "sub".
type Claims struct {
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 bearer tokens.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), now: time.Now}
}

func (j *JWTResolver) Resolve(r *http.Request) (Session, error) {
	raw := bearerToken(r)
	if raw == "" || len(j.secret) == 0 {
		return Session{}, ErrNoSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Session{}, ErrNoSession
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}
	return Session{
		UserID: claims.Subject,
		Role:   role,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// Issue signs a token for s that expires after ttl. Used by the CLI and tests.
func (j *JWTResolver) Issue(s Session, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		Role:  s.Role,
		Email: s.Email,
		Name:  s.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
