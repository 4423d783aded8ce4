package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"extension_sunset/internal/app"
	"extension_sunset/internal/domain/sunset"
	"extension_sunset/internal/infra/config"
	idb "extension_sunset/internal/infra/database"
	"extension_sunset/internal/infra/extension"
	"extension_sunset/internal/infra/lognotify"
	"extension_sunset/internal/infra/logger"
	"extension_sunset/internal/infra/scheduler"
	"extension_sunset/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Extension Sunset Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"state_driver": cfg.StateDriver,
		"start":        cfg.SunsetStart.Format(time.RFC3339),
		"timeline":     cfg.TimelineDays,
	}).Info("Configuration loaded.")

	timeline, err := cfg.Timeline()
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid sunset timeline")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, shutdown := context.WithCancel(sigCtx)
	defer shutdown()

	// Initialize State Store
	store, closeStore, err := openStateStore(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open sunset state store")
	}
	defer closeStore()
	mainLogger.Info("Sunset state store ready.")

	// Initialize Notifier (Telegram if configured, log otherwise)
	var notifier sunset.Notifier
	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := logger.Component("telebot").WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		notifier = telegram.NewNotifier(telegram.NewTelebotAdapter(bot), cfg.NotifyChatID)
		mainLogger.WithField("chat_id", cfg.NotifyChatID).Info("Telegram notifier initialized.")
	} else {
		notifier = lognotify.New(logger.Component("notifier"))
		mainLogger.Info("No TELEGRAM_TOKEN set, notifications will be written to the log.")
	}

	// The uninstaller tears down the scheduler, which is created after the service it drives.
	var sunsetScheduler *scheduler.SunsetScheduler
	uninstaller := extension.NewSelfUninstaller(
		cfg.UninstallCommand,
		extension.TimerFunc(func() { sunsetScheduler.Unregister() }),
		shutdown,
		logger.Component("uninstaller"),
	)

	sunsetService := app.NewSunsetService(timeline, cfg.Content, store, notifier, uninstaller, logger.Component("sunset"))
	sunsetScheduler = scheduler.NewSunsetScheduler(
		sunsetService,
		logger.Component("scheduler"),
		cfg.TickInitialDelay,
		cfg.TickPeriod,
		cfg.TickTimeout,
	)

	if bot != nil {
		adminService := app.NewAdminService(sunsetService, cfg.AdminTelegramID)
		telegram.RegisterAdminHandlers(ctx, bot, adminService, logger.Component("admin"))
		go bot.Start()
		defer bot.Stop()
		mainLogger.Info("Telegram admin commands registered.")
	}

	if err := sunsetScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start sunset scheduler")
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done() // Signal or uninstall

	mainLogger.Info("Shutting down application...")
	sunsetScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

func openStateStore(ctx context.Context, cfg *config.AppConfig) (*idb.StateRepository, func(), error) {
	var repo *idb.StateRepository
	closeFn := func() {}

	switch cfg.StateDriver {
	case config.DriverPostgres:
		db, openErr := idb.NewPostgresConnection(cfg.DatabaseURL)
		if openErr != nil {
			return nil, closeFn, openErr
		}
		closeFn = func() { db.Close() }
		repo = idb.NewPostgresStateRepository(db)
	case config.DriverSQLite:
		db, openErr := idb.NewSQLiteConnection(cfg.SQLitePath)
		if openErr != nil {
			return nil, closeFn, openErr
		}
		closeFn = func() { db.Close() }
		repo = idb.NewSQLiteStateRepository(db)
	default:
		return nil, closeFn, fmt.Errorf("unsupported state driver %q", cfg.StateDriver)
	}

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(schemaCtx); err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return repo, closeFn, nil
}
