package models

// User represents bot settings for a telegram user.
// ReminderHour/ReminderMinute are nil until the user picks a time,
// PillsLeft is nil while no pack is active.
type User struct {
	ChatID         int64 `db:"chat_id"`
	ReminderHour   *int  `db:"reminder_hour"`
	ReminderMinute *int  `db:"reminder_minute"`
	PillsLeft      *int  `db:"pills_left"`
	CreatedAt      int64 `db:"created_at"`
}

// Timings holds the three per-user delays, in whole seconds.
//
//	Np  — напоминание → проверка
//	Npr — проверка → повтор без реакции
//	Npn — проверка → повтор после «Нет»
type Timings struct {
	ChatID int64 `db:"chat_id"`
	Np     int   `db:"np"`
	Npr    int   `db:"npr"`
	Npn    int   `db:"npn"`
}

// Defaults applied until the user overrides them.
const (
	DefaultNp  = 1800
	DefaultNpr = 300
	DefaultNpn = 1800
)

// Intake log statuses. A day with no row at all reads as missed.
const (
	StatusTaken     = "taken"
	StatusNotNeeded = "not_needed"
)

// LogEntry is one immutable adherence record.
type LogEntry struct {
	ID        int64   `db:"id"`
	ChatID    int64   `db:"chat_id"`
	Day       string  `db:"day"` // YYYY-MM-DD, local civil date
	Status    string  `db:"status"`
	TimeTaken *string `db:"time_taken"` // HH:MM, only for taken
}

// MessageRef is an opaque handle to a sent chat message, kept so the
// previous check prompt can be deleted before re-sending.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Choice is one tappable option attached to a prompt.
type Choice struct {
	Label string
	Token string
}
