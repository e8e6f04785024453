package handlers

import (
	"context"

	"github.com/rs/zerolog/log"
)

func (h *Handler) HandleCommand(ctx context.Context, chatID int64, cmd string) {
	switch cmd {
	case "start":
		h.askReminderTime(ctx, chatID)
	case "help":
		h.send(chatID, textHelp)
	}
}

func (h *Handler) askReminderTime(ctx context.Context, chatID int64) {
	if err := h.DB.SetUserState(ctx, chatID, stateWaitTime); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("set user state")
		h.send(chatID, textSaveFailed)
		return
	}
	h.send(chatID, textAskTime)
}
