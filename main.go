package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-pill-reminder/internal/config"
	"telegram-pill-reminder/internal/gateway"
	"telegram-pill-reminder/internal/handlers"
	"telegram-pill-reminder/internal/reminder"
	"telegram-pill-reminder/internal/storage"
	"telegram-pill-reminder/internal/timer"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth")
	}
	log.Info().Str("account", bot.Self.UserName).Msg("authorized")

	clock := clockwork.NewRealClock()
	loc := cfg.Location()

	timers, err := timer.New(loc, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}

	m := reminder.NewMachine(gateway.New(bot), db, timers, clock, loc)
	if err := m.RestoreDailySchedules(ctx); err != nil {
		log.Fatal().Err(err).Msg("restore daily reminders")
	}
	timers.Start()
	defer func() {
		if err := timers.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown")
		}
	}()

	handlers.New(bot, db, m).Run(ctx)
}
