package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"telegram-pill-reminder/internal/reminder"
)

// HandleCallback routes a tapped prompt button into the machine. The callback
// is answered only after the machine returns, so a failed write is never
// shown as saved.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	token := cq.Data

	switch token {
	case reminder.TokenYes, reminder.TokenNo, reminder.TokenSkipToday:
	default:
		h.answer(cq.ID, "")
		return
	}

	if err := h.Machine.OnUserChoice(ctx, chatID, token); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Str("token", token).Msg("handle choice")
		h.answer(cq.ID, cbSaveError)
		h.send(chatID, textSaveFailed)
		return
	}

	switch token {
	case reminder.TokenYes:
		h.answer(cq.ID, cbThanks)
	case reminder.TokenNo:
		h.answer(cq.ID, cbLater)
	case reminder.TokenSkipToday:
		h.answer(cq.ID, cbTomorrow)
	}
}

func (h *Handler) answer(callbackID, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Debug().Err(err).Msg("answer callback")
	}
}
