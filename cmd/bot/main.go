package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/r1kuza/schoolbot/internal/bot/config"
	"github.com/r1kuza/schoolbot/internal/bot/dedup"
	"github.com/r1kuza/schoolbot/internal/bot/extract"
	"github.com/r1kuza/schoolbot/internal/bot/httpapi"
	"github.com/r1kuza/schoolbot/internal/bot/logcfg"
	"github.com/r1kuza/schoolbot/internal/bot/ratelimit"
	"github.com/r1kuza/schoolbot/internal/bot/repository"
	"github.com/r1kuza/schoolbot/internal/bot/service"
	"github.com/r1kuza/schoolbot/internal/bot/state"
	"github.com/r1kuza/schoolbot/internal/bot/tgclient"
)

func main() {

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	logcfg.RunLoggerConfig(cfg.EnvLogsLevel, cfg.EnvLogFileName)
	logrus.Infof("BOT started with configuration logs level: %v", cfg.EnvLogsLevel)

	db, err := sql.Open("sqlite3", cfg.EnvDatabasePath)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	storage, err := repository.New(db)
	if err != nil {
		logrus.Fatalf("failed to init storage: %v", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.EnvBotToken)
	if err != nil {
		logrus.Panic(err)
	}
	logrus.Infof("Bot API created successfully for %s", bot.Self.UserName)

	myBot := service.New(
		tgclient.New(bot),
		storage,
		state.NewMemoryStore(cfg.StateTTL()),
		dedup.NewWindow(),
		ratelimit.New(20, time.Minute),
		extract.Extract,
		cfg.EnvAdmins,
	)

	if cfg.EnvHTTPAddr != "" {
		opsServer := &http.Server{
			Addr:    cfg.EnvHTTPAddr,
			Handler: httpapi.NewHandler(storage).Router(),
		}
		go func() {
			logrus.Infof("Ops server listening on %s", cfg.EnvHTTPAddr)
			if err := opsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("ops server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := opsServer.Shutdown(ctx); err != nil {
				logrus.Errorf("ops server shutdown: %v", err)
			}
		}()
	}

	// Старые обновления, накопленные за время простоя, не обрабатываем
	if _, err = bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		logrus.Errorf("failed to drop pending updates: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60 //seconds timeout
	updates := bot.GetUpdatesChan(updateConfig)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		logrus.Infof("Received %v signal, shutting down bot...", sig)
		bot.StopReceivingUpdates()
	}()

	// Основной цикл обработки обновлений
	for update := range updates {
		myBot.Dispatch(&update)
	}
	logrus.Info("Shutting down main loop...")
}
