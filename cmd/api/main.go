package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"go-backoffice-api/internal/config"
	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/server"
	"go-backoffice-api/internal/service"
	"go-backoffice-api/internal/worker"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/database"
	"go-backoffice-api/pkg/idgen"
	"go-backoffice-api/pkg/jwt"
	"go-backoffice-api/pkg/mailer"
	"go-backoffice-api/pkg/sms"
)

var logger = loggo.GetLogger("backoffice")

func main() {
	if err := run(); err != nil {
		logger.Criticalf("%s", errors.ErrorStack(err))
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg := config.Load()
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		return errors.Annotate(err, "configuring loggers")
	}
	jwt.Configure(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err := idgen.Init(cfg.SnowflakeNode); err != nil {
		return errors.Trace(err)
	}

	// 2. Setup database
	db, err := database.Open(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		LogSQL:   cfg.DBLogSQL,
	})
	if err != nil {
		return errors.Trace(err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return errors.Annotate(err, "migrating schema")
	}

	// 3. Seed privileges, roles and the admin account
	if err := service.SeedDefaults(
		repository.NewPrivilegeRepo(db),
		repository.NewRoleRepo(db),
		repository.NewUserRepo(db),
		cfg.AdminEmail, cfg.AdminPassword,
	); err != nil {
		return errors.Annotate(err, "seeding defaults")
	}

	// 4. Setup WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Outbound providers; nil leaves the feature disabled
	var mail mailer.Mailer
	if cfg.EmailConfigured() {
		mail = mailer.NewSMTP(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			APIKey:   cfg.EmailAPIKey,
			From:     cfg.EmailFrom,
			FromName: cfg.AppName,
		})
	} else {
		logger.Warningf("EMAIL_API_KEY not set, order confirmations are disabled")
	}
	var smsSender sms.Sender
	if cfg.SMSConfigured() {
		smsSender = sms.NewTwilio(sms.Config{
			AccountSID:          cfg.TwilioAccountSID,
			AuthToken:           cfg.TwilioAuthToken,
			MessagingServiceSID: cfg.TwilioMessagingServiceSID,
		})
	} else {
		logger.Warningf("Twilio credentials not set, SMS campaigns cannot be sent")
	}

	// 6. Wire layers and routes
	srv := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Hub:       wsHub,
		Mailer:    mail,
		SMS:       smsSender,
		Registry:  metrics.NewRegistry(),
		AccessLog: true,
	})

	// 7. Live dashboard updates
	poller, err := worker.NewDashboardPoller(worker.DashboardPollerConfig{
		Service:      srv.Dashboard,
		Publisher:    wsHub,
		Clock:        clock.WallClock,
		Interval:     cfg.DashboardPollInterval,
		LookbackDays: cfg.DashboardLookbackDays,
	})
	if err != nil {
		return errors.Trace(err)
	}

	// 8. Graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.App.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-listenErr:
		poller.Kill()
		_ = poller.Wait()
		wsHub.Stop()
		return errors.Annotate(err, "listening")
	}

	logger.Infof("shutting down server")
	poller.Kill()
	if err := poller.Wait(); err != nil {
		logger.Warningf("dashboard poller: %v", err)
	}
	wsHub.Stop()
	if err := srv.App.Shutdown(); err != nil {
		return errors.Annotate(err, "server forced to shutdown")
	}
	logger.Infof("server exited")
	return nil
}
