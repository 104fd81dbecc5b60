package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the audience a session token was issued for.
type Role string

const (
	// RolePatient may drive the session: slider, forms, clear.
	RolePatient Role = "patient"
	// RoleClinician gets a read-only view of a shared session.
	RoleClinician Role = "clinician"
)

func (r Role) Valid() bool { return r == RolePatient || r == RoleClinician }

const tokenIssuer = "gdm-server"

var ErrInvalidToken = errors.New("invalid session token")

// Claims binds a bearer token to one session. The subject is the session id.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(key []byte, ttl time.Duration) *Tokens {
	return &Tokens{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for sessionID and returns it with its expiry.
func (t *Tokens) Issue(sessionID uuid.UUID, role Role) (string, time.Time, error) {
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns the session id and role it carries.
func (t *Tokens) Parse(tokenStr string) (uuid.UUID, Role, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}
	sid, err := uuid.Parse(claims.Subject)
	if err != nil || !claims.Role.Valid() {
		return uuid.Nil, "", ErrInvalidToken
	}
	return sid, claims.Role, nil
}
