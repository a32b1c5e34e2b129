package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/handler"
	adminHandler "github.com/jwalitptl/clinic-api/internal/handler/admin"
	"github.com/jwalitptl/clinic-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	catalogHandler "github.com/jwalitptl/clinic-api/internal/handler/catalog"
	"github.com/jwalitptl/clinic-api/internal/handler/doctor"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	"github.com/jwalitptl/clinic-api/internal/handler/patient"
	profileHandler "github.com/jwalitptl/clinic-api/internal/handler/profile"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	adminService "github.com/jwalitptl/clinic-api/internal/service/admin"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/internal/service/booking"
	catalogService "github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/internal/service/encounter"
	eventService "github.com/jwalitptl/clinic-api/internal/service/event"
	profileService "github.com/jwalitptl/clinic-api/internal/service/profile"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
	appvalidator "github.com/jwalitptl/clinic-api/pkg/validator"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		n, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Int("applied", n).Msg("migrations applied")
	}

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	apptRepo := postgres.NewAppointmentRepository(base)
	encounterRepo := postgres.NewEncounterRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	examRepo := postgres.NewExamRepository(base)
	catalogRepo := postgres.NewCatalogRepository(base)
	statsRepo := postgres.NewStatsRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	m := metrics.New(cfg.Server.MetricsPrefix, prometheus.DefaultRegisterer)
	events := eventService.NewService(outboxRepo)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	validate := appvalidator.New()

	authSvc := authService.NewService(userRepo, patientRepo, doctorRepo, tokens, hasher, validate, events)
	bookingSvc := booking.NewService(apptRepo, patientRepo, validate, events, m, booking.Config{
		StrictCancel: cfg.Booking.StrictCancel,
		ListLimit:    cfg.Booking.ListLimit,
	})
	encounterSvc := encounter.NewService(doctorRepo, encounterRepo, prescriptionRepo, examRepo, validate, events, m, encounter.Config{
		RecordClinicalHistory: cfg.Workflow.RecordClinicalHistory,
		StrictPrescriptions:   cfg.Workflow.StrictPrescriptions,
	})
	catalogCache := cache.New(cfg.Cache.CatalogTTL, cfg.Cache.CleanupInterval)
	catalogSvc := catalogService.NewService(catalogRepo, doctorRepo, patientRepo, apptRepo, prescriptionRepo, examRepo,
		catalogCache, cfg.Cache.CatalogTTL, cfg.Booking.ListLimit)
	profileSvc := profileService.NewService(patientRepo, doctorRepo, validate)
	adminSvc := adminService.NewService(userRepo, apptRepo, statsRepo, hasher, validate, catalogSvc)

	// Limiters for both groups share one store, keyed by limiter name and client.
	limiterStore := cache.New(10*time.Minute, 10*time.Minute)
	authLimiter := middleware.NewRateLimiter("auth", middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.AuthPerMinute / 60),
		Burst: cfg.RateLimit.AuthBurst,
		Idle:  10 * time.Minute,
	}, limiterStore)
	authMW := middleware.NewAuthMiddleware(tokens)

	r := router.NewRouter(
		router.RouterConfig{
			ReleaseMode:  !cfg.IsDevelopment(),
			AllowOrigins: cfg.CORS.AllowOrigins,
			CORSMaxAge:   cfg.CORS.MaxAge,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			RateLimit:    rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:    cfg.RateLimit.Burst,
			StaticDir:    cfg.Server.StaticDir,
		},
		handler.NewHandler(prometheus.DefaultGatherer),
		health.NewHandler(db),
		m,
		limiterStore,
		authHandler.NewHandler(authSvc, authMW, authLimiter.RateLimit()),
		profileHandler.NewHandler(profileSvc, authMW),
		appointment.NewHandler(bookingSvc, authMW),
		doctor.NewHandler(encounterSvc, catalogSvc, authMW),
		patient.NewHandler(catalogSvc, authMW),
		adminHandler.NewHandler(adminSvc, authMW),
		catalogHandler.NewHandler(catalogSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited properly")
	return nil
}
