package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-reveal-backend/config"
	"campus-reveal-backend/internal/api"
	"campus-reveal-backend/internal/db"
	"campus-reveal-backend/internal/logger"
	"campus-reveal-backend/internal/notification"
	"campus-reveal-backend/internal/server"
	"campus-reveal-backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Campus Reveal API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Infow("configuration loaded", "path", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	notifier := newNotifier(cfg.Mail, log)

	router := api.NewRouter(&cfg.Server, appStore, notifier, log)
	srv := server.New(fmt.Sprintf(":%d", cfg.Server.Port), router, cfg.Server.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, srv, nil, log)
}

// newNotifier wires the SMTP relay when one is configured. Without one,
// college requests fail with notification.ErrMailDisabled.
func newNotifier(cfg config.MailConfig, log *zap.SugaredLogger) *notification.CollegeRequestNotifier {
	if !cfg.Enabled() {
		log.Warn("mail relay not configured; college requests will fail")
		return notification.NewCollegeRequestNotifier(notification.DisabledMailer{}, cfg.From, cfg.To)
	}

	mailer := notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
	notifier := notification.NewCollegeRequestNotifier(mailer, cfg.From, cfg.To)
	log.Infow("mail relay configured", "host", cfg.Host, "to", notifier.Recipient())
	return notifier
}
