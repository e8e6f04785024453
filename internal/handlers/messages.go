package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"telegram-pill-reminder/internal/models"
)

func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case actionChangeTime:
		h.askReminderTime(ctx, chatID)
		return
	case actionShowTimings:
		h.showTimings(ctx, chatID)
		return
	case actionEditTimings:
		if err := h.DB.SetUserState(ctx, chatID, stateWaitTimings); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("set user state")
			h.send(chatID, textSaveFailed)
			return
		}
		h.send(chatID, textAskTimings)
		return
	case actionNewPack:
		if err := h.DB.SetUserState(ctx, chatID, stateWaitPackCount); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("set user state")
			h.send(chatID, textSaveFailed)
			return
		}
		h.send(chatID, textAskPackCount)
		return
	}

	if strings.HasPrefix(text, "Расписание") {
		h.showMonth(ctx, chatID, text)
		return
	}

	state, err := h.DB.UserState(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("read user state")
		return
	}

	switch state {
	case stateWaitTime:
		h.processReminderTime(ctx, chatID, text)
	case stateWaitTimings:
		h.processTimings(ctx, chatID, text)
	case stateWaitPackCount:
		h.processPackCount(ctx, chatID, text)
	}
}

func (h *Handler) processReminderTime(ctx context.Context, chatID int64, text string) {
	hour, minute, ok := parseClock(text)
	if !ok {
		h.send(chatID, textBadTime)
		return
	}
	if err := h.Machine.OnReminderTimeSet(ctx, chatID, hour, minute); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("set reminder time")
		h.send(chatID, textSaveFailed)
		return
	}
	h.clearState(ctx, chatID)
	h.send(chatID, fmt.Sprintf(textTimeSaved, hour, minute))
}

func (h *Handler) processTimings(ctx context.Context, chatID int64, text string) {
	updates, err := parseTimings(text)
	if err != nil {
		h.send(chatID, fmt.Sprintf(textTimingsError, err))
		h.clearState(ctx, chatID)
		return
	}
	for key, val := range updates {
		if err := h.Machine.OnTimingUpdate(ctx, chatID, key, val); err != nil {
			h.send(chatID, fmt.Sprintf(textTimingsError, err))
			h.clearState(ctx, chatID)
			return
		}
	}
	h.clearState(ctx, chatID)
	h.send(chatID, textTimingsSaved)
}

func (h *Handler) processPackCount(ctx context.Context, chatID int64, text string) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 0 {
		h.send(chatID, textBadPackCount)
		return
	}
	if err := h.Machine.OnNewPack(ctx, chatID, count); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("start new pack")
		h.send(chatID, textSaveFailed)
		return
	}
	h.clearState(ctx, chatID)
	h.send(chatID, fmt.Sprintf(textPackStarted, count))
}

func (h *Handler) showTimings(ctx context.Context, chatID int64) {
	t, err := h.DB.Timings(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("read timings")
		h.send(chatID, textSaveFailed)
		return
	}
	h.send(chatID, fmt.Sprintf(
		"Напоминание → Проверка: %d мин\n"+
			"Проверка → Проверка (без реакции): %d мин\n"+
			"Проверка → Проверка (после «Нет»): %d мин",
		t.Np/60, t.Npr/60, t.Npn/60))
}

func (h *Handler) showMonth(ctx context.Context, chatID int64, text string) {
	yearMonth, display, ok := parseMonth(text)
	if !ok {
		h.send(chatID, textBadMonth)
		return
	}
	logs, err := h.DB.LogsForMonth(ctx, chatID, yearMonth)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("read month logs")
		h.send(chatID, textSaveFailed)
		return
	}
	if len(logs) == 0 {
		h.send(chatID, fmt.Sprintf(textEmptyMonth, display))
		return
	}
	h.send(chatID, renderMonth(display, logs))
}

func renderMonth(display string, logs []models.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Расписание за %s:\n\n", display)
	for _, e := range logs {
		switch {
		case e.Status == models.StatusTaken && e.TimeTaken != nil:
			fmt.Fprintf(&b, "✅ %s — выпила в %s\n", displayDay(e.Day), *e.TimeTaken)
		case e.Status == models.StatusNotNeeded:
			fmt.Fprintf(&b, "⏸ %s — пить не нужно\n", displayDay(e.Day))
		default:
			fmt.Fprintf(&b, "❌ %s — пропущено\n", displayDay(e.Day))
		}
	}
	return b.String()
}

func (h *Handler) clearState(ctx context.Context, chatID int64) {
	if err := h.DB.SetUserState(ctx, chatID, ""); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("clear user state")
	}
}
