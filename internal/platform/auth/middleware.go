package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	RoleKey      contextKey = "session_role"
)

// SessionMiddleware requires a bearer session token and stores the session
// id and role on the request context.
func SessionMiddleware(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			sid, role, err := tokens.Parse(strings.TrimSpace(tokenStr))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(string(SessionIDKey), sid.String())
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), sid, role)))
			return next(c)
		}
	}
}

// WithSession returns a context carrying the session id and role.
func WithSession(ctx context.Context, sessionID uuid.UUID, role Role) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	return context.WithValue(ctx, RoleKey, role)
}

func SessionIDFromContext(ctx context.Context) uuid.UUID {
	sid, _ := ctx.Value(SessionIDKey).(uuid.UUID)
	return sid
}

func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(RoleKey).(Role)
	return role
}
