package reminder

import "telegram-pill-reminder/internal/models"

const (
	msgReminder  = "Пора выпить таблетку!"
	msgCheck     = "Ты выпила таблетку?"
	msgPackLeft  = "Таблеток в пачке осталось: %d"
	msgPackLow   = "⚠️ Пачка заканчивается, купи новую."
	msgPackEmpty = "💊 Пачка закончилась. Не забудь написать «Новая пачка», когда купишь!"

	btnYes  = "Да"
	btnNo   = "Нет"
	btnSkip = "Сегодня не нужно"
)

// Tokens carried in the check prompt's tappable choices.
const (
	TokenYes       = "yes"
	TokenNo        = "no"
	TokenSkipToday = "skip_today"
)

// Pack counts in [1, lowPackThreshold] trigger the low-pack advisory.
const lowPackThreshold = 5

func checkChoices() []models.Choice {
	return []models.Choice{
		{Label: btnSkip, Token: TokenSkipToday},
		{Label: btnYes, Token: TokenYes},
		{Label: btnNo, Token: TokenNo},
	}
}
