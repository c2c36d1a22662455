// Package jobs runs periodic maintenance: evicting expired in-memory state
// and purging refresh tokens nobody can use any more.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper evicts entries that expired before now and reports how many.
type Sweeper interface {
	Sweep(now time.Time) int
}

// TokenPurger deletes refresh tokens that expired before the cutoff.
type TokenPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Retention keeps expired refresh tokens around for a day so a late refresh
// still reports "expired" rather than "invalid".
const Retention = 24 * time.Hour

type Scheduler struct {
	cron     *cron.Cron
	sweepers map[string]Sweeper
	tokens   TokenPurger
	log      zerolog.Logger
	now      func() time.Time
}

// NewScheduler wires the jobs.  Nil sweepers are skipped; a nil purger
// disables the token purge.
func NewScheduler(sweepers map[string]Sweeper, tokens TokenPurger, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	active := make(map[string]Sweeper, len(sweepers))
	for name, s := range sweepers {
		if s != nil {
			active[name] = s
		}
	}
	return &Scheduler{
		cron:     c,
		sweepers: active,
		tokens:   tokens,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

func (s *Scheduler) Start() error {
	if len(s.sweepers) > 0 {
		if _, err := s.cron.AddFunc("0 * * * * *", s.sweep); err != nil { // every minute
			return err
		}
	}
	if s.tokens != nil {
		if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeTokens); err != nil { // daily 03:00
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits up to 5s for running jobs.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweep() {
	now := s.now()
	for name, sw := range s.sweepers {
		if n := sw.Sweep(now); n > 0 {
			s.log.Debug().Str("target", name).Int("evicted", n).Msg("sweep")
		}
	}
}

func (s *Scheduler) purgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := s.tokens.DeleteExpired(ctx, s.now().Add(-Retention))
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired refresh tokens failed")
		return
	}
	s.log.Info().Int64("deleted", n).Msg("expired refresh tokens purged")
}
