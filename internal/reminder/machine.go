// Package reminder implements the per-user reminder state machine: the daily
// nudge, the delayed check prompt, the re-prompt loop and its resolution into
// the intake log and the pill-pack counter.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"telegram-pill-reminder/internal/models"
)

// Phase of one user's reminder session.
type Phase int

const (
	PhaseIdle            Phase = iota
	PhaseReminded              // reminder sent, check delay (НП) running
	PhaseAwaitingConfirm       // check prompt sent, re-prompt loop (НПР) running
	PhaseSnoozed               // user tapped «Нет», retry delay (НПН) running
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReminded:
		return "reminded"
	case PhaseAwaitingConfirm:
		return "awaiting_confirm"
	case PhaseSnoozed:
		return "snoozed"
	}
	return "unknown"
}

var (
	ErrInvalidTime     = errors.New("время вне диапазона 00:00–23:59")
	ErrInvalidCount    = errors.New("количество не может быть отрицательным")
	ErrInvalidDuration = errors.New("длительность не может быть отрицательной")
	ErrUnknownChoice   = errors.New("неизвестный вариант ответа")
)

// Gateway is the narrow chat-transport surface the machine needs. Delete is
// best-effort at every call site.
type Gateway interface {
	Send(ctx context.Context, chatID int64, text string) (models.MessageRef, error)
	SendChoice(ctx context.Context, chatID int64, text string, choices []models.Choice) (models.MessageRef, error)
	Delete(ctx context.Context, ref models.MessageRef) error
}

// Store is the persistence surface the machine needs.
type Store interface {
	SetReminderTime(ctx context.Context, chatID int64, hour, minute int) error
	ListScheduled(ctx context.Context) ([]models.User, error)
	Timings(ctx context.Context, chatID int64) (models.Timings, error)
	SetTiming(ctx context.Context, chatID int64, key string, seconds int) error
	AppendLog(ctx context.Context, chatID int64, day, status string, timeTaken *string) error
	SetPackCount(ctx context.Context, chatID int64, count int) error
	DecrementPackIfActive(ctx context.Context, chatID int64) (int, bool, error)
}

// Timers is the keyed scheduling surface the machine needs.
type Timers interface {
	ScheduleDaily(key string, hour, minute int, fn func()) error
	ScheduleOnce(key string, delay time.Duration, fn func()) error
	ScheduleRecurring(key string, interval time.Duration, fn func()) error
	Cancel(key string)
}

// session is one user's live reminder cycle. Its mutex serializes every
// transition for that user; users never share a lock.
type session struct {
	mu        sync.Mutex
	phase     Phase
	prompt    models.MessageRef
	hasPrompt bool
}

type Machine struct {
	gw     Gateway
	store  Store
	timers Timers
	clock  clockwork.Clock
	loc    *time.Location

	mu       sync.Mutex // guards the sessions map only
	sessions map[int64]*session
}

func NewMachine(gw Gateway, store Store, timers Timers, clock clockwork.Clock, loc *time.Location) *Machine {
	return &Machine{
		gw:       gw,
		store:    store,
		timers:   timers,
		clock:    clock,
		loc:      loc,
		sessions: make(map[int64]*session),
	}
}

func dailyKey(chatID int64) string  { return fmt.Sprintf("daily:%d", chatID) }
func checkKey(chatID int64) string  { return fmt.Sprintf("check:%d", chatID) }
func repeatKey(chatID int64) string { return fmt.Sprintf("repeat:%d", chatID) }
func retryKey(chatID int64) string  { return fmt.Sprintf("retry:%d", chatID) }

// RestoreDailySchedules re-registers the daily trigger for every user with a
// stored reminder time. Sessions in flight before a restart are dropped; the
// next daily fire starts a fresh one.
func (m *Machine) RestoreDailySchedules(ctx context.Context) error {
	users, err := m.store.ListScheduled(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		chatID := u.ChatID
		if err := m.timers.ScheduleDaily(dailyKey(chatID), *u.ReminderHour, *u.ReminderMinute, func() {
			m.OnDailyTrigger(context.Background(), chatID)
		}); err != nil {
			return fmt.Errorf("расписание для %d: %w", chatID, err)
		}
	}
	log.Info().Int("users", len(users)).Msg("daily reminders restored")
	return nil
}

// OnReminderTimeSet persists the new daily time and re-registers the trigger,
// replacing any previous registration for the user.
func (m *Machine) OnReminderTimeSet(ctx context.Context, chatID int64, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrInvalidTime
	}
	if err := m.store.SetReminderTime(ctx, chatID, hour, minute); err != nil {
		return err
	}
	return m.timers.ScheduleDaily(dailyKey(chatID), hour, minute, func() {
		m.OnDailyTrigger(context.Background(), chatID)
	})
}

// OnNewPack starts a fresh pack with the given pill count.
func (m *Machine) OnNewPack(ctx context.Context, chatID int64, count int) error {
	if count < 0 {
		return ErrInvalidCount
	}
	return m.store.SetPackCount(ctx, chatID, count)
}

// OnTimingUpdate stores one of the np/npr/npn delays, in whole seconds.
func (m *Machine) OnTimingUpdate(ctx context.Context, chatID int64, key string, seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration
	}
	return m.store.SetTiming(ctx, chatID, key, seconds)
}

// OnDailyTrigger starts the day's reminder cycle. Any still-unresolved prior
// session is superseded: its timers are cancelled and its prompt dropped, so
// at most one session is live per user.
func (m *Machine) OnDailyTrigger(ctx context.Context, chatID int64) {
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		log.Info().Int64("chat_id", chatID).Stringer("phase", s.phase).
			Msg("unresolved session superseded by new daily reminder")
	}
	m.cancelSessionTimers(chatID)
	m.deletePrompt(ctx, chatID, s)
	s.phase = PhaseReminded

	if _, err := m.gw.Send(ctx, chatID, msgReminder); err != nil {
		// Transport failure: the check timer below still runs.
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("send reminder")
	}

	t := m.timings(ctx, chatID)
	if err := m.timers.ScheduleOnce(checkKey(chatID), seconds(t.Np), func() {
		m.onCheckDue(chatID)
	}); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("schedule check")
	}
}

// OnUserChoice handles a tapped prompt button. Persistence failures are
// returned so the shell never acknowledges a write that did not happen;
// choices arriving in the wrong phase are stale and ignored.
func (m *Machine) OnUserChoice(ctx context.Context, chatID int64, token string) error {
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch token {
	case TokenYes:
		if s.phase != PhaseAwaitingConfirm {
			m.logStale(chatID, token, s.phase)
			return nil
		}
		now := m.clock.Now().In(m.loc)
		takenAt := now.Format("15:04")
		if err := m.store.AppendLog(ctx, chatID, now.Format("2006-01-02"), models.StatusTaken, &takenAt); err != nil {
			return fmt.Errorf("запись приёма: %w", err)
		}
		left, active, err := m.store.DecrementPackIfActive(ctx, chatID)
		if err != nil {
			return fmt.Errorf("списание таблетки: %w", err)
		}
		m.resolve(ctx, chatID, s)
		if active {
			m.notify(ctx, chatID, fmt.Sprintf(msgPackLeft, left))
			switch {
			case left == 0:
				m.notify(ctx, chatID, msgPackEmpty)
			case left <= lowPackThreshold:
				m.notify(ctx, chatID, msgPackLow)
			}
		}
		return nil

	case TokenNo:
		if s.phase != PhaseAwaitingConfirm {
			m.logStale(chatID, token, s.phase)
			return nil
		}
		t, err := m.store.Timings(ctx, chatID)
		if err != nil {
			return fmt.Errorf("чтение таймингов: %w", err)
		}
		m.timers.Cancel(repeatKey(chatID))
		m.deletePrompt(ctx, chatID, s)
		s.phase = PhaseSnoozed
		if err := m.timers.ScheduleOnce(retryKey(chatID), seconds(t.Npn), func() {
			m.onCheckDue(chatID)
		}); err != nil {
			return fmt.Errorf("отложенная проверка: %w", err)
		}
		return nil

	case TokenSkipToday:
		if s.phase != PhaseReminded && s.phase != PhaseAwaitingConfirm {
			m.logStale(chatID, token, s.phase)
			return nil
		}
		day := m.clock.Now().In(m.loc).Format("2006-01-02")
		if err := m.store.AppendLog(ctx, chatID, day, models.StatusNotNeeded, nil); err != nil {
			return fmt.Errorf("запись пропуска: %w", err)
		}
		m.resolve(ctx, chatID, s)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownChoice, token)
}

// Phase reports the user's current session phase.
func (m *Machine) Phase(chatID int64) Phase {
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// onCheckDue fires when the НП delay after the reminder, or the НПН delay
// after «Нет», elapses: send the check prompt and start the re-prompt loop.
func (m *Machine) onCheckDue(chatID int64) {
	ctx := context.Background()
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReminded && s.phase != PhaseSnoozed {
		log.Debug().Int64("chat_id", chatID).Stringer("phase", s.phase).Msg("stale check timer")
		return
	}
	m.sendPrompt(ctx, chatID, s)
	s.phase = PhaseAwaitingConfirm

	t := m.timings(ctx, chatID)
	if err := m.timers.ScheduleRecurring(repeatKey(chatID), seconds(t.Npr), func() {
		m.onRepromptDue(chatID)
	}); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("schedule re-prompt")
	}
}

// onRepromptDue re-sends the check prompt on the НПР cadence. The loop has no
// cap; it runs until the user answers or the next daily trigger supersedes it.
func (m *Machine) onRepromptDue(chatID int64) {
	ctx := context.Background()
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingConfirm {
		log.Debug().Int64("chat_id", chatID).Stringer("phase", s.phase).Msg("stale re-prompt timer")
		return
	}
	m.sendPrompt(ctx, chatID, s)
}

// sendPrompt deletes the previous prompt (best-effort) and sends a fresh one.
// Caller holds s.mu.
func (m *Machine) sendPrompt(ctx context.Context, chatID int64, s *session) {
	m.deletePrompt(ctx, chatID, s)
	ref, err := m.gw.SendChoice(ctx, chatID, msgCheck, checkChoices())
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("send check prompt")
		return
	}
	s.prompt = ref
	s.hasPrompt = true
}

// resolve folds the session back to idle: timers cancelled, prompt dropped.
// Caller holds s.mu.
func (m *Machine) resolve(ctx context.Context, chatID int64, s *session) {
	m.cancelSessionTimers(chatID)
	m.deletePrompt(ctx, chatID, s)
	s.phase = PhaseIdle
}

func (m *Machine) cancelSessionTimers(chatID int64) {
	m.timers.Cancel(checkKey(chatID))
	m.timers.Cancel(repeatKey(chatID))
	m.timers.Cancel(retryKey(chatID))
}

func (m *Machine) deletePrompt(ctx context.Context, chatID int64, s *session) {
	if !s.hasPrompt {
		return
	}
	if err := m.gw.Delete(ctx, s.prompt); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("delete prompt")
	}
	s.hasPrompt = false
}

func (m *Machine) logStale(chatID int64, token string, phase Phase) {
	log.Debug().Int64("chat_id", chatID).Str("token", token).Stringer("phase", phase).
		Msg("stale choice ignored")
}

func (m *Machine) notify(ctx context.Context, chatID int64, text string) {
	if _, err := m.gw.Send(ctx, chatID, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("send advisory")
	}
}

// timings reads the user's delays, falling back to the defaults when the
// store is unreachable from a timer callback (there is no caller to surface
// the error to, and a late check beats no check at all).
func (m *Machine) timings(ctx context.Context, chatID int64) models.Timings {
	t, err := m.store.Timings(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("read timings, using defaults")
		return models.Timings{ChatID: chatID, Np: models.DefaultNp, Npr: models.DefaultNpr, Npn: models.DefaultNpn}
	}
	return t
}

func (m *Machine) session(chatID int64) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		s = &session{phase: PhaseIdle}
		m.sessions[chatID] = s
	}
	return s
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
