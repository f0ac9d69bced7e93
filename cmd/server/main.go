// @title Church Site API
// @version 1.0
// @description Events and registrations, attendance registry, pastors, gallery, blog and newsletter.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"churchsite/config"
	_ "churchsite/docs"
	"churchsite/internal/adapters/auth"
	"churchsite/internal/adapters/email"
	"churchsite/internal/adapters/markdown"
	httpdelivery "churchsite/internal/delivery/http"
	"churchsite/internal/delivery/http/controllers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/repository/postgres"
	"churchsite/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}

	applied, err := postgres.MigrateUp(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewEventRegistrationRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	adminRepo := postgres.NewAdminRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		ReplyTo:     cfg.EmailReplyTo,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	templates, err := email.NewTemplateRenderer(cfg.Location)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, templates, logger)
	eventService := services.NewEventService(eventRepo, regRepo, emailService, logger, cfg.RequestTimeout, cfg.Location)
	registrationService := services.NewRegistrationService(eventRepo, regRepo, cfg.RequestTimeout)
	attendanceService := services.NewAttendanceService(attendanceRepo, cfg.RequestTimeout, cfg.Location)
	contentService := services.NewContentService(
		postgres.NewPastorRepository(db),
		postgres.NewGalleryRepository(db),
		postgres.NewPostRepository(db),
		postgres.NewSubscriptionRepository(db),
		markdown.NewRenderer(),
		cfg.RequestTimeout,
	)
	authService := services.NewAuthService(adminRepo, auth.NewBcryptHasher(auth.DefaultBcryptCost), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, cfg.RequestTimeout)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			return err
		}
		logger.Info("admin account ready", "email", cfg.AdminEmail)
	}

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		PerMinute:      cfg.RegistrationRatePerMinute,
		Burst:          cfg.RegistrationRateBurst,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	go sweepRateLimiter(ctx, limiter, logger)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Health:        controllers.NewHealthController(logger, db),
		Auth:          controllers.NewAuthController(logger, authService),
		Events:        controllers.NewEventController(logger, eventService),
		Registrations: controllers.NewRegistrationController(logger, registrationService, eventService),
		Attendance:    controllers.NewAttendanceController(logger, attendanceService, cfg.Location),
		Content:       controllers.NewContentController(logger, contentService),
	}, verifier, limiter, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepRateLimiter(ctx context.Context, limiter *middleware.RateLimiter, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("rate limiter swept", "buckets", n)
			}
		}
	}
}
