package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	identity "github.com/lpuqa/go-identity"
	"github.com/lpuqa/go-identity/mailer"
	"github.com/lpuqa/go-identity/social"
	"github.com/lpuqa/go-identity/social/providers/google"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	logger := &zapLogger{log: zlog.Sugar()}

	if err := run(logger); err != nil {
		logger.Error("server exited: %v", err)
		os.Exit(1)
	}
}

func run(logger identity.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := identity.RunMigrations(ctx, db); err != nil {
		cancel()
		return err
	}
	cancel()

	repo := identity.NewRepositoryManager(db)
	repo.MustValidate()

	machine := identity.NewVerificationMachine()

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.smtpEnabled() {
		mail = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPEmail,
			Password: cfg.SMTPPassword,
		})
	} else {
		logger.Warn("SMTP not configured, verification codes will not be delivered")
	}

	tokens := identity.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenExpiration, cfg.TokenIssuer, logger)
	auther := identity.NewAuthenticator(repo, tokens).WithLogger(logger)

	controller := identity.NewController(auther, identity.Commands{
		IssueSignupCode:         identity.NewIssueSignupCodeHandler(repo, machine, mail).WithLogger(logger),
		ConfirmSignupCode:       identity.NewConfirmSignupCodeHandler(repo, machine).WithLogger(logger),
		ResendSignupCode:        identity.NewResendSignupCodeHandler(repo, machine, mail).WithLogger(logger),
		InitializePasswordReset: identity.NewInitializePasswordResetHandler(repo, machine, mail).WithLogger(logger),
		VerifyPasswordResetCode: identity.NewVerifyPasswordResetCodeHandler(repo, machine).WithLogger(logger),
		FinalizePasswordReset:   identity.NewFinalizePasswordResetHandler(repo).WithLogger(logger),
	}, identity.WithControllerLogger(logger))

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	controller.RegisterRoutes(app)

	if cfg.googleEnabled() {
		states := social.NewSignedStateManager([]byte(cfg.OAuthStateSecret), 10*time.Minute)
		socialAuth := social.NewAuthenticator(repo, states, []social.Provider{
			google.New(google.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				CallbackURL:  cfg.GoogleRedirectURI,
			}),
		}, social.WithLogger(logger))

		social.NewHTTPController(socialAuth, social.HTTPConfig{
			NewUserURL: cfg.NewUserURL,
			HomeURL:    cfg.HomeURL,
		}, logger).RegisterRoutes(app)
	} else {
		logger.Warn("Google login not configured, /auth routes disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("received %s, shutting down", sig)
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

type zapLogger struct {
	log *zap.SugaredLogger
}

func (z *zapLogger) Debug(format string, args ...any) { z.log.Debugf(format, args...) }
func (z *zapLogger) Info(format string, args ...any)  { z.log.Infof(format, args...) }
func (z *zapLogger) Warn(format string, args ...any)  { z.log.Warnf(format, args...) }
func (z *zapLogger) Error(format string, args ...any) { z.log.Errorf(format, args...) }
