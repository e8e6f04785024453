// Package gateway adapts the Telegram Bot API to the narrow send/delete
// surface the reminder machine consumes.
package gateway

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-pill-reminder/internal/models"
)

type Telegram struct {
	bot *tgbotapi.BotAPI
}

func New(bot *tgbotapi.BotAPI) *Telegram {
	return &Telegram{bot: bot}
}

func (t *Telegram) Send(_ context.Context, chatID int64, text string) (models.MessageRef, error) {
	m, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return models.MessageRef{}, err
	}
	return models.MessageRef{ChatID: chatID, MessageID: m.MessageID}, nil
}

// SendChoice sends text with the choices rendered as inline buttons, one row
// per choice, in the given order.
func (t *Telegram) SendChoice(_ context.Context, chatID int64, text string, choices []models.Choice) (models.MessageRef, error) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Token),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	m, err := t.bot.Send(msg)
	if err != nil {
		return models.MessageRef{}, err
	}
	return models.MessageRef{ChatID: chatID, MessageID: m.MessageID}, nil
}

func (t *Telegram) Delete(_ context.Context, ref models.MessageRef) error {
	_, err := t.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	return err
}
