package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gdmcare/gdm/internal/config"
	"github.com/gdmcare/gdm/internal/platform/auth"
	"github.com/gdmcare/gdm/internal/platform/db"
)

func TestResolveSigningKey_FromHex(t *testing.T) {
	want := bytes.Repeat([]byte{0xab}, 32)
	key, generated, err := resolveSigningKey(hex.EncodeToString(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generated {
		t.Error("expected provided key, not generated")
	}
	if !bytes.Equal(key, want) {
		t.Errorf("expected decoded key, got %x", key)
	}
}

func TestResolveSigningKey_Generated(t *testing.T) {
	key, generated, err := resolveSigningKey("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !generated {
		t.Error("expected a generated key")
	}
	if len(key) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key))
	}
}

func TestResolveSigningKey_InvalidHex(t *testing.T) {
	if _, _, err := resolveSigningKey("zz-not-hex"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestMigrationsFS_Embedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS(""), "*.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) < 3 {
		t.Errorf("expected embedded migrations, got %v", files)
	}
}

func TestMigrationsFS_Dir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_x.sql"), []byte("SELECT 1;"), 0o600); err != nil {
		t.Fatalf("failed to write migration: %v", err)
	}
	files, _ := fs.Glob(migrationsFS(dir), "*.sql")
	if len(files) != 1 || files[0] != "001_x.sql" {
		t.Errorf("expected the directory's migration, got %v", files)
	}
}

func TestPrintStatuses(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	printStatuses(&buf, []db.MigrationStatus{
		{Version: 1, Name: "session", Applied: true, AppliedAt: &at},
		{Version: 2, Name: "profile"},
	})
	out := buf.String()
	if !strings.Contains(out, "applied") || !strings.Contains(out, "2026-05-04 10:30:00") {
		t.Errorf("expected applied row, got:\n%s", out)
	}
	if !strings.Contains(out, "pending") {
		t.Errorf("expected pending row, got:\n%s", out)
	}
}

func TestPhaseCmd(t *testing.T) {
	cmd := phaseCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"30"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Peak Resistance") {
		t.Errorf("expected peak phase, got %q", buf.String())
	}

	cmd = phaseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"thirty"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for non-numeric week")
	}
}

func TestBMICmd(t *testing.T) {
	cmd := bmiCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"160", "62"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "BMI 24.2 (Overweight)" {
		t.Errorf("unexpected output %q", got)
	}

	cmd = bmiCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"0", "62"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for zero height")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		BodyLimit:      "64K",
		RequestTimeout: 5 * time.Second,
		SessionTTL:     time.Hour,
		WeekMin:        20,
		WeekMax:        40,
		DefaultWeek:    24,
	}
}

func TestNewServer_EndToEnd(t *testing.T) {
	tokens := auth.NewTokens(bytes.Repeat([]byte{1}, 32), time.Hour)
	cfg := testConfig()
	e := newServer(cfg, zerolog.Nop(), newSessionManager(cfg, zerolog.Nop(), memoryStores()), tokens, nil)

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected request id and security headers")
	}

	if rec := do(http.MethodGet, "/health/db", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected no db health route in memory mode, got %d", rec.Code)
	}

	if rec := do(http.MethodGet, "/api/v1/phases?week=36", "", ""); !strings.Contains(rec.Body.String(), "Late Phase") {
		t.Errorf("unexpected phase response %s", rec.Body.String())
	}
	if rec := do(http.MethodGet, "/api/v1/bmi?height_cm=160&weight_kg=62", "", ""); !strings.Contains(rec.Body.String(), `"bmi":24.2`) {
		t.Errorf("unexpected bmi response %s", rec.Body.String())
	}

	rec = do(http.MethodPost, "/api/v1/sessions", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)
	token := created.Session.Token

	do(http.MethodPost, "/api/v1/session/modals/log/open", token, "")
	rec = do(http.MethodPost, "/api/v1/session/modals/log/submit", token, `{"kind":"post-meal","glucose":128,"meal":"Adobo w/ Brown Rice","walk_minutes":15}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/api/v1/session/screen", token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Adobo w/ Brown Rice") {
		t.Errorf("expected logged meal in patient screen, got %d: %s", rec.Code, rec.Body.String())
	}

	big := `{"meal":"` + strings.Repeat("x", 70*1024) + `"}`
	if rec := do(http.MethodPost, "/api/v1/session/modals/log/submit", token, big); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", rec.Code)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env      string
		wantJSON bool
	}{
		{"development", false},
		{"production", true},
		{"test", true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&config.Config{Env: tt.env}, &buf)
			logger.Info().Msg("hello")

			isJSON := json.Valid(bytes.TrimSpace(buf.Bytes()))
			if isJSON != tt.wantJSON {
				t.Errorf("expected JSON=%v, got %q", tt.wantJSON, buf.String())
			}
			if !strings.Contains(buf.String(), "hello") {
				t.Errorf("expected message in output, got %q", buf.String())
			}
		})
	}
}
