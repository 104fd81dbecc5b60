package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required []Role
		wantCode int
	}{
		{"patient allowed", RolePatient, []Role{RolePatient}, http.StatusOK},
		{"clinician denied", RoleClinician, []Role{RolePatient}, http.StatusForbidden},
		{"any of several", RoleClinician, []Role{RolePatient, RoleClinician}, http.StatusOK},
		{"no role", "", []Role{RolePatient}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.role != "" {
				req = req.WithContext(WithSession(req.Context(), uuid.New(), tt.role))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			}

			err := RequireRole(tt.required...)(handler)(c)
			if tt.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, httpErr.Code)
			}
		})
	}
}
