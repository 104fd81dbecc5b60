package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gdmcare/gdm/internal/config"
	"github.com/gdmcare/gdm/internal/domain/anthropometry"
	"github.com/gdmcare/gdm/internal/domain/gestation"
	"github.com/gdmcare/gdm/internal/domain/glucose"
	"github.com/gdmcare/gdm/internal/domain/profile"
	"github.com/gdmcare/gdm/internal/domain/session"
	"github.com/gdmcare/gdm/internal/platform/auth"
	"github.com/gdmcare/gdm/internal/platform/db"
	"github.com/gdmcare/gdm/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gdm-server",
		Short: "Gestational diabetes companion API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(phaseCmd())
	rootCmd.AddCommand(bmiCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default: embedded migrations)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatuses(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default: embedded migrations)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(dir string, fn func(context.Context, *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.UsesDatabase() {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, migrationsFS(dir)))
}

// migrationsFS reads migrations from dir, or from the binary when dir is
// empty.
func migrationsFS(dir string) fs.FS {
	if dir == "" {
		return db.Migrations()
	}
	return os.DirFS(dir)
}

func printStatuses(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func phaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase <week>",
		Short: "Classify a gestational week and print its insight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("week must be an integer: %q", args[0])
			}
			s := gestation.Summarize(week)
			in := gestation.SelectInsight(s.Phase)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %d: %s (%s, weeks %d-%d)\n", s.Week, s.Label, s.Description, s.RangeStart, s.RangeEnd)
			fmt.Fprintf(out, "%s\n%s\nFocus: %s\n", in.Title, in.Message, in.Focus)
			return nil
		},
	}
}

func bmiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bmi <height-cm> <weight-kg>",
		Short: "Compute BMI with the WHO Asia-Pacific classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("height must be a number: %q", args[0])
			}
			weight, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("weight must be a number: %q", args[1])
			}
			res, err := anthropometry.Assess(height, weight)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "BMI %.1f (%s)\n", res.BMI, res.Status)
			return nil
		},
	}
}

// stores are the repositories behind every domain service.
type stores struct {
	sessions session.Repository
	readings glucose.Repository
	profiles profile.Repository
}

func memoryStores() stores {
	return stores{
		sessions: session.NewMemoryRepo(),
		readings: glucose.NewMemoryRepo(),
		profiles: profile.NewMemoryRepo(),
	}
}

func pgStores(conn db.Queryable) stores {
	return stores{
		sessions: session.NewRepoPG(conn),
		readings: glucose.NewRepoPG(conn),
		profiles: profile.NewRepoPG(conn),
	}
}

// sessionSweepInterval is how often idle sessions are looked for.
const sessionSweepInterval = time.Minute

// newLogger writes human-readable console output in development and JSON
// otherwise.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	key, generated, err := resolveSigningKey(cfg.SessionSigningKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve session signing key")
	}
	if generated {
		logger.Warn().Msg("SESSION_SIGNING_KEY not set; using a random key, tokens will not survive a restart")
	}
	tokens := auth.NewTokens(key, cfg.SessionTTL)

	// Stores
	st := memoryStores()
	var pool db.Pool
	if cfg.UsesDatabase() {
		ctx := context.Background()
		pgPool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pgPool.Close()
		st = pgStores(pgPool)
		pool = pgPool
		logger.Info().Msg("connected to database")
	} else {
		logger.Info().Msg("DATABASE_URL not set; sessions are kept in memory only")
	}

	mgr := newSessionManager(cfg, logger, st)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go mgr.Run(sweepCtx, sessionSweepInterval)

	e := newServer(cfg, logger, mgr, tokens, pool)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware, services and routes. pool is nil for the
// in-memory backend.
func newServer(cfg *config.Config, logger zerolog.Logger, mgr *session.Manager, tokens *auth.Tokens, pool db.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// API group
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	// Stateless derivations
	gestation.NewHandler().RegisterRoutes(apiV1)
	anthropometry.NewHandler().RegisterRoutes(apiV1)

	// Sessions
	session.NewHandler(mgr, tokens).RegisterRoutes(apiV1)

	return e
}

// newSessionManager builds the session registry over the given stores.
// Sessions idle for longer than the token lifetime can no longer be
// reached, so that is also the idle TTL.
func newSessionManager(cfg *config.Config, logger zerolog.Logger, st stores) *session.Manager {
	readingSvc := glucose.NewService(st.readings)
	profileSvc := profile.NewService(st.profiles)
	weeks := session.WeekRange{Min: cfg.WeekMin, Max: cfg.WeekMax, Default: cfg.DefaultWeek}
	return session.NewManager(st.sessions, readingSvc, profileSvc, weeks, logger).WithIdleTTL(cfg.SessionTTL)
}

// resolveSigningKey returns the session signing key from the hex-encoded
// SESSION_SIGNING_KEY value or generates a random 32-byte key. The second
// return value is true when a random key was generated.
func resolveSigningKey(envValue string) ([]byte, bool, error) {
	if envValue != "" {
		decoded, err := hex.DecodeString(envValue)
		if err != nil {
			return nil, false, fmt.Errorf("invalid SESSION_SIGNING_KEY hex value: %w", err)
		}
		return decoded, false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate random session signing key: %w", err)
	}
	return key, true, nil
}
