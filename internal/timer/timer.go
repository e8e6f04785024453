// Package timer is a keyed facade over one shared gocron scheduler.
//
// Every scheduled job carries a caller-chosen string key; scheduling under an
// existing key replaces the prior job, and Cancel is idempotent. All jobs run
// in the scheduler's configured location, so daily triggers follow the local
// wall clock across DST shifts while one-shot delays are pinned to an
// absolute instant computed at registration.
package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrInvalidClockTime = errors.New("hour/minute out of range")

type Service struct {
	sched gocron.Scheduler
	clock clockwork.Clock
	loc   *time.Location

	mu   sync.Mutex
	jobs map[string]uuid.UUID
}

func New(loc *time.Location, clock clockwork.Clock) (*Service, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, err
	}
	return &Service{
		sched: s,
		clock: clock,
		loc:   loc,
		jobs:  make(map[string]uuid.UUID),
	}, nil
}

func (s *Service) Start() { s.sched.Start() }

func (s *Service) Shutdown() error { return s.sched.Shutdown() }

// ScheduleDaily registers fn to fire once per civil day at hour:minute local
// time, replacing any job registered under the same key.
func (s *Service) ScheduleDaily(key string, hour, minute int, fn func()) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrInvalidClockTime
	}
	return s.register(key,
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(hour), uint(minute), 0),
		)), fn)
}

// ScheduleOnce fires fn once, no earlier than delay from now. The run time is
// an absolute instant, not local-time arithmetic.
func (s *Service) ScheduleOnce(key string, delay time.Duration, fn func()) error {
	runAt := s.clock.Now().In(s.loc).Add(delay)
	return s.register(key,
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)), fn)
}

// ScheduleRecurring fires fn every interval until cancelled, first fire one
// interval from now.
func (s *Service) ScheduleRecurring(key string, interval time.Duration, fn func()) error {
	return s.register(key, gocron.DurationJob(interval), fn)
}

// Cancel removes the job registered under key. Unknown and already-fired
// keys are a no-op.
func (s *Service) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
}

// ActiveKeys reports the currently registered job keys, for introspection.
func (s *Service) ActiveKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	return keys
}

func (s *Service) register(key string, def gocron.JobDefinition, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)

	job, err := s.sched.NewJob(def, gocron.NewTask(fn), gocron.WithName(key))
	if err != nil {
		return err
	}
	s.jobs[key] = job.ID()
	return nil
}

func (s *Service) removeLocked(key string) {
	id, ok := s.jobs[key]
	if !ok {
		return
	}
	delete(s.jobs, key)
	if err := s.sched.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("remove scheduled job")
	}
}
