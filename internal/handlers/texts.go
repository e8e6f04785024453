package handlers

const (
	textAskTime      = "В какое время напоминать о таблетке? Напиши в формате чч:мм (например, 09:30)"
	textBadTime      = "Неверный формат. Попробуй ещё раз: чч:мм"
	textTimeSaved    = "Отлично! Теперь я буду напоминать тебе каждый день в %02d:%02d."
	textAskTimings   = "Введите тайминги в формате:\nНП=1800, НПР=300, НПН=1800\n(значения в секундах)"
	textTimingsSaved = "✅ Тайминги обновлены!"
	textTimingsError = "❌ Ошибка: %s. Попробуй ещё раз."
	textAskPackCount = "Сколько таблеток в пачке сейчас?"
	textBadPackCount = "Пожалуйста, введите корректное число таблеток (например, 12)."
	textPackStarted  = "✅ Новая пачка на %d таблеток начата!"
	textSaveFailed   = "Не получилось сохранить, попробуй ещё раз."
	textBadMonth     = "Неверный формат. Пример: Расписание 10.25"
	textEmptyMonth   = "Нет записей за %s."

	textHelp = "Напоминание - Проверка = НП\n" +
		"Проверка - Проверка (Реакция) = НПР\n" +
		"Проверка - Проверка (Кнопка \"Нет\") = НПН\n\n" +
		"Команды:\n" +
		"• Расписание мм.гг\n" +
		"• Изменить\n" +
		"• Покажи тайминги\n" +
		"• Исправь тайминги\n" +
		"• Новая пачка"

	cbThanks    = "Спасибо!"
	cbLater     = "Напомню снова через некоторое время."
	cbTomorrow  = "Хорошо, до завтра."
	cbSaveError = "Ошибка, попробуй ещё раз"
)

const (
	actionChangeTime  = "Изменить"
	actionShowTimings = "Покажи тайминги"
	actionEditTimings = "Исправь тайминги"
	actionNewPack     = "Новая пачка"
)

const (
	stateWaitTime      = "wait_time"
	stateWaitTimings   = "wait_timings"
	stateWaitPackCount = "wait_pack_count"
)
