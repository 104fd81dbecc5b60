package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestSessionMiddleware_ValidToken(t *testing.T) {
	tokens := NewTokens(testKey, time.Hour)
	sid := uuid.New()
	signed, _, err := tokens.Issue(sid, RoleClinician)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if got := SessionIDFromContext(ctx); got != sid {
			t.Errorf("expected session %s, got %s", sid, got)
		}
		if got := RoleFromContext(ctx); got != RoleClinician {
			t.Errorf("expected clinician, got %s", got)
		}
		if c.Get(string(SessionIDKey)) != sid.String() {
			t.Errorf("expected session id on echo context")
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := SessionMiddleware(tokens)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	tokens := NewTokens(testKey, time.Hour)
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := func(c echo.Context) error {
				t.Error("handler should not be called")
				return nil
			}

			err := SessionMiddleware(tokens)(handler)(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", httpErr.Code)
			}
		})
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if SessionIDFromContext(req.Context()) != uuid.Nil {
		t.Error("expected nil session id")
	}
	if RoleFromContext(req.Context()) != "" {
		t.Error("expected empty role")
	}
}
