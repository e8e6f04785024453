package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"telegram-pill-reminder/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

// Column whitelist for SetTiming; anything else is an unknown key.
var timingColumns = map[string]string{
	"np":  "np",
	"npr": "npr",
	"npn": "npn",
}

var ErrUnknownTimingKey = errors.New("unknown timing key")

type DB struct{ *sqlx.DB }

func New(path string) (*DB, error) {
	db, err := sqlx.Connect("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sqlx.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ---------- reminder time ---------------------------------------------------

func (d *DB) SetReminderTime(ctx context.Context, chatID int64, hour, minute int) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO users (chat_id, reminder_hour, reminder_minute, created_at)
        VALUES (?,?,?,?)
        ON CONFLICT(chat_id) DO UPDATE SET reminder_hour=excluded.reminder_hour,
            reminder_minute=excluded.reminder_minute
    `, chatID, hour, minute, time.Now().Unix())
	return err
}

// ReminderTime returns the configured daily time, or ok=false when the user
// never set one.
func (d *DB) ReminderTime(ctx context.Context, chatID int64) (hour, minute int, ok bool, err error) {
	var u models.User
	err = d.GetContext(ctx, &u, `
        SELECT chat_id, reminder_hour, reminder_minute, pills_left, created_at
        FROM users WHERE chat_id=?`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	if u.ReminderHour == nil || u.ReminderMinute == nil {
		return 0, 0, false, nil
	}
	return *u.ReminderHour, *u.ReminderMinute, true, nil
}

// ListScheduled returns every user with a reminder time set. Used at startup
// to re-register daily triggers; in-flight sessions are not persisted.
func (d *DB) ListScheduled(ctx context.Context) ([]models.User, error) {
	var res []models.User
	err := d.SelectContext(ctx, &res, `
        SELECT chat_id, reminder_hour, reminder_minute, pills_left, created_at
        FROM users
        WHERE reminder_hour IS NOT NULL AND reminder_minute IS NOT NULL`)
	return res, err
}

// ---------- timings ---------------------------------------------------------

// Timings reads the per-user delays, creating the defaults row on first read.
func (d *DB) Timings(ctx context.Context, chatID int64) (models.Timings, error) {
	_, err := d.ExecContext(ctx, `
        INSERT INTO timings (chat_id, np, npr, npn) VALUES (?,?,?,?)
        ON CONFLICT(chat_id) DO NOTHING`,
		chatID, models.DefaultNp, models.DefaultNpr, models.DefaultNpn)
	if err != nil {
		return models.Timings{}, err
	}
	var t models.Timings
	err = d.GetContext(ctx, &t, `SELECT chat_id, np, npr, npn FROM timings WHERE chat_id=?`, chatID)
	return t, err
}

func (d *DB) SetTiming(ctx context.Context, chatID int64, key string, seconds int) error {
	col, ok := timingColumns[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTimingKey, key)
	}
	if _, err := d.Timings(ctx, chatID); err != nil {
		return err
	}
	_, err := d.ExecContext(ctx,
		fmt.Sprintf("UPDATE timings SET %s = ? WHERE chat_id = ?", col),
		seconds, chatID)
	return err
}

// ---------- intake log ------------------------------------------------------

func (d *DB) AppendLog(ctx context.Context, chatID int64, day, status string, timeTaken *string) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO intake_log (chat_id, day, status, time_taken)
        VALUES (?,?,?,?)`, chatID, day, status, timeTaken)
	return err
}

// LogsForMonth returns entries for a "YYYY-MM" month, oldest first.
// A month with no entries yields an empty slice.
func (d *DB) LogsForMonth(ctx context.Context, chatID int64, yearMonth string) ([]models.LogEntry, error) {
	res := []models.LogEntry{}
	err := d.SelectContext(ctx, &res, `
        SELECT id, chat_id, day, status, time_taken
        FROM intake_log
        WHERE chat_id = ? AND day LIKE ? || '-%'
        ORDER BY day, id`, chatID, yearMonth)
	return res, err
}

// ---------- pill pack -------------------------------------------------------

func (d *DB) SetPackCount(ctx context.Context, chatID int64, count int) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO users (chat_id, pills_left, created_at) VALUES (?,?,?)
        ON CONFLICT(chat_id) DO UPDATE SET pills_left=excluded.pills_left
    `, chatID, count, time.Now().Unix())
	return err
}

// PackCount returns the remaining count, or active=false when no pack is
// tracked for the user.
func (d *DB) PackCount(ctx context.Context, chatID int64) (count int, active bool, err error) {
	var left sql.NullInt64
	err = d.GetContext(ctx, &left, `SELECT pills_left FROM users WHERE chat_id=?`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !left.Valid {
		return 0, false, nil
	}
	return int(left.Int64), true, nil
}

// DecrementPackIfActive atomically takes one pill off the pack. The
// conditional update never drives the count below zero: with no pack, or a
// pack already at zero, it mutates nothing and reports active=false.
func (d *DB) DecrementPackIfActive(ctx context.Context, chatID int64) (newCount int, active bool, err error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE users SET pills_left = pills_left - 1
        WHERE chat_id = ? AND pills_left > 0`, chatID)
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}

	var left int
	if err := tx.GetContext(ctx, &left, `SELECT pills_left FROM users WHERE chat_id=?`, chatID); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return left, true, nil
}

// ---------- user state (shell fsm) ------------------------------------------

func (d *DB) SetUserState(ctx context.Context, chatID int64, state string) error {
	if state == "" {
		_, err := d.ExecContext(ctx, `DELETE FROM user_states WHERE chat_id=?`, chatID)
		return err
	}
	_, err := d.ExecContext(ctx, `
        INSERT INTO user_states(chat_id, state) VALUES (?,?)
        ON CONFLICT(chat_id) DO UPDATE SET state=excluded.state`, chatID, state)
	return err
}

func (d *DB) UserState(ctx context.Context, chatID int64) (string, error) {
	var st string
	err := d.GetContext(ctx, &st, `SELECT state FROM user_states WHERE chat_id=?`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return st, err
}
