package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caredesk/caredesk/internal/config"
	"github.com/caredesk/caredesk/internal/domain/admin"
	"github.com/caredesk/caredesk/internal/domain/chat"
	"github.com/caredesk/caredesk/internal/domain/clinical"
	"github.com/caredesk/caredesk/internal/domain/identity"
	"github.com/caredesk/caredesk/internal/domain/insight"
	"github.com/caredesk/caredesk/internal/domain/scheduling"
	"github.com/caredesk/caredesk/internal/platform/auth"
	"github.com/caredesk/caredesk/internal/platform/cache"
	"github.com/caredesk/caredesk/internal/platform/db"
	"github.com/caredesk/caredesk/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "caredesk-server",
		Short: "CareDesk appointment and health insight API server",
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory containing migration files")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", applied)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%-8s %-40s %-8s %s\n", "VERSION", "NAME", "APPLIED", "APPLIED AT")
			for _, s := range statuses {
				appliedAt := "-"
				if s.AppliedAt != nil {
					appliedAt = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%-8d %-40s %-8t %s\n", s.Version, s.Name, s.Applied, appliedAt)
			}
			return nil
		},
	}

	cmd.AddCommand(up, status)
	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting caredesk server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	store, closeStore, err := newCacheStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	defer closeStore()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.RequestIDHeader},
	}))

	e.GET("/health", db.HealthHandler(pool))

	rlCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rlCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rlCfg.BurstSize = cfg.RateLimitBurst
	}

	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rlCfg))

	api := public.Group("")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with dev auth: every request is treated as an admin")
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(issuer))
	}

	// identity
	userRepo := identity.NewUserRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	doctorRepo := identity.NewDoctorRepoPG(pool)
	identitySvc := identity.NewService(userRepo, patientRepo, doctorRepo, issuer)
	identity.NewHandler(identitySvc).RegisterRoutes(public, api)

	// scheduling
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedSvc := scheduling.NewService(apptRepo, store, logger)
	scheduling.NewHandler(schedSvc).RegisterRoutes(api)

	// clinical records; appointment lookups go through the scheduling service
	diseaseRepo := clinical.NewDiseaseHistoryRepoPG(pool)
	prescriptionRepo := clinical.NewPrescriptionRepoPG(pool)
	catalogRepo := clinical.NewCatalogRepoPG(pool)
	clinicalSvc := clinical.NewService(diseaseRepo, prescriptionRepo, catalogRepo, schedSvc, store, logger)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api)

	// chat
	messageRepo := chat.NewMessageRepoPG(pool)
	chatSvc := chat.NewService(messageRepo, schedSvc)
	chat.NewHandler(chatSvc).RegisterRoutes(api)

	// insight
	insightRepo := insight.NewRepoPG(pool)
	insightSvc := insight.NewService(insightRepo, insight.WeightedPolicy{}, store, cacheTTL, logger)
	insight.NewHandler(insightSvc).RegisterRoutes(api)

	// admin
	statsRepo := admin.NewStatsRepoPG(pool)
	adminSvc := admin.NewService(statsRepo, store, cacheTTL, logger)
	admin.NewHandler(adminSvc).RegisterRoutes(api)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newCacheStore picks Redis when configured, otherwise an in-process store
// with a background sweep for expired entries.
func newCacheStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Store, func(), error) {
	if !cfg.CacheDisabled() {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using redis cache")
		return rs, func() { _ = rs.Close() }, nil
	}
	ms := cache.NewMemoryStore()
	ms.StartCleanup(ctx, time.Minute)
	logger.Info().Msg("using in-memory cache")
	return ms, func() {}, nil
}
