// Package handlers is the dispatch shell: it routes Telegram updates to the
// reminder machine and the storage facade, and holds the small text-input FSM
// for settings edits.
package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"telegram-pill-reminder/internal/reminder"
	"telegram-pill-reminder/internal/storage"
)

type Handler struct {
	Bot     *tgbotapi.BotAPI
	DB      *storage.DB
	Machine *reminder.Machine
}

func New(bot *tgbotapi.BotAPI, db *storage.DB, m *reminder.Machine) *Handler {
	return &Handler{Bot: bot, DB: db, Machine: m}
}

// Run long-polls Telegram until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60

	updates := h.Bot.GetUpdatesChan(cfg)
	go func() {
		<-ctx.Done()
		h.Bot.StopReceivingUpdates()
	}()

	for upd := range updates {
		switch {
		case upd.Message != nil:
			h.HandleMessage(ctx, upd.Message)
		case upd.CallbackQuery != nil:
			h.HandleCallback(ctx, upd.CallbackQuery)
		}
	}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.HandleCommand(ctx, msg.Chat.ID, msg.Command())
		return
	}
	h.HandleText(ctx, msg)
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("send reply")
	}
}
