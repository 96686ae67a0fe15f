package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sid145V/medical-assistant/internal/config"
	"github.com/Sid145V/medical-assistant/internal/domain/admin"
	"github.com/Sid145V/medical-assistant/internal/domain/assistant"
	"github.com/Sid145V/medical-assistant/internal/domain/contact"
	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/domain/pharmacy"
	"github.com/Sid145V/medical-assistant/internal/domain/scheduling"
	"github.com/Sid145V/medical-assistant/internal/platform/auth"
	"github.com/Sid145V/medical-assistant/internal/platform/db"
	"github.com/Sid145V/medical-assistant/internal/platform/middleware"
	"github.com/Sid145V/medical-assistant/internal/platform/telemetry"
	"github.com/Sid145V/medical-assistant/internal/seed"
	"github.com/Sid145V/medical-assistant/migrations"
)

const (
	version     = "0.1.0"
	tokenIssuer = "medical-assistant"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medical-assistant",
		Short: "Medical assistant marketplace API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
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

// migrationSource returns the embedded schema unless dir is set.
func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationSource(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationSource(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts and catalog (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			a, err := newApp(ctx, cfg, pool, nil, logger)
			if err != nil {
				return err
			}
			res, err := a.seed(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d account(s) and %d medicine(s).\n", res.Accounts, res.Medicines)
			return nil
		},
	}
}

// app holds the wired services and handlers.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *telemetry.Metrics

	identity  *identity.Service
	pharmacy  *pharmacy.Service
	jwtConfig auth.JWTConfig
	handlers  []interface{ RegisterRoutes(*echo.Group) }
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		Timezone: cfg.Timezone,
		AppName:  tokenIssuer,
	}
}

// signingKey returns the configured JWT secret. Development runs without
// one get a random per-process key, so tokens do not survive a restart.
func signingKey(cfg *config.Config, logger zerolog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	buf := make([]byte, 32)
	if _, err := crypto_rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	logger.Warn().Msg("JWT_SECRET not set, using a random development signing key")
	return []byte(hex.EncodeToString(buf)), nil
}

func newApp(ctx context.Context, cfg *config.Config, pool db.Pool, metrics *telemetry.Metrics, logger zerolog.Logger) (*app, error) {
	key, err := signingKey(cfg, logger)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	tx := db.NewTransactor(pool)

	// Identity
	identitySvc := identity.NewService(
		identity.NewUserRepo(pool),
		identity.NewCredentialRepo(pool),
		tx,
		auth.NewPasswordHasher(0),
		auth.NewTokenIssuer(key, tokenIssuer, cfg.JWTTTL),
	)
	identitySvc.SetMetrics(metrics)

	// Scheduling
	schedSvc := scheduling.NewService(scheduling.NewAppointmentRepo(pool), identitySvc, tx, scheduling.Options{
		Gap:       cfg.BookingGap,
		Location:  loc,
		SlotDays:  cfg.SlotDays,
		SlotTimes: cfg.SlotTimes,
	})
	schedSvc.SetMetrics(metrics)

	// Pharmacy
	pharmacySvc := pharmacy.NewService(pharmacy.NewMedicineRepo(pool), pharmacy.NewOrderRepo(pool), identitySvc, tx)
	pharmacySvc.SetMetrics(metrics)
	pharmacySvc.SetLocation(loc)

	// Assistant
	completer := assistant.Unavailable()
	if cfg.GeminiAPIKey != "" {
		gc, err := assistant.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		completer = gc
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, the assistant will answer with its fallback reply")
	}
	assistantSvc := assistant.NewService(completer, assistant.Options{
		Timeout:   cfg.ChatTimeout,
		CacheSize: cfg.ChatCacheSize,
		CacheTTL:  cfg.ChatCacheTTL,
	}, logger)
	assistantSvc.SetMetrics(metrics)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		identity:  identitySvc,
		pharmacy:  pharmacySvc,
		jwtConfig: auth.JWTConfig{SigningKey: key, Issuer: tokenIssuer, Skipper: auth.AuthSkipper},
		handlers: []interface{ RegisterRoutes(*echo.Group) }{
			identity.NewHandler(identitySvc),
			scheduling.NewHandler(schedSvc),
			pharmacy.NewHandler(pharmacySvc),
			contact.NewHandler(contact.NewService(contact.NewMessageRepo(pool))),
			admin.NewHandler(admin.NewService(admin.NewStatsRepo(pool))),
			assistant.NewHandler(assistantSvc),
		},
	}, nil
}

func (a *app) seed(ctx context.Context) (seed.Result, error) {
	return seed.Run(ctx, a.identity, a.pharmacy, time.Now(), a.logger)
}

// server builds the HTTP server. dbHealth serves /health/db.
func (a *app) server(dbHealth echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	if a.metrics != nil {
		e.Use(a.metrics.Middleware())
	}
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{HSTS: a.cfg.TLSEnabled}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(echomw.BodyLimit("1M"))

	// Auth middleware
	if a.cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(a.jwtConfig))
	} else {
		e.Use(auth.JWTMiddleware(a.jwtConfig))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if dbHealth != nil {
		e.GET("/health/db", dbHealth)
	}
	if a.metrics != nil {
		e.GET("/metrics", a.metrics.Handler())
	}

	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: a.cfg.RateLimitRPS,
		BurstSize:         a.cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	for _, h := range a.handlers {
		h.RegisterRoutes(apiV1)
	}
	return e
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	metrics := telemetry.New()
	metrics.RegisterPool(pool.Stat)

	a, err := newApp(ctx, cfg, pool, metrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise services")
	}
	if cfg.SeedOnStart {
		if _, err := a.seed(ctx); err != nil {
			logger.Fatal().Err(err).Msg("seed failed")
		}
	}

	e := a.server(db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
