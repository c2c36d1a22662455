package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/gamification"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/queue"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

// CheckInResult is the state reported back after a successful check-in.
type CheckInResult struct {
	Message  string
	Outcome  gamification.Outcome
	Progress model.Progress
}

type CheckInService struct {
	users  UserStore
	events EventPublisher
	loc    *time.Location
	log    zerolog.Logger
	now    func() time.Time
}

func NewCheckInService(users UserStore, events EventPublisher, loc *time.Location, log zerolog.Logger) *CheckInService {
	if events == nil {
		events = NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CheckInService{
		users:  users,
		events: events,
		loc:    loc,
		log:    log.With().Str("component", "checkin").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *CheckInService) WithClock(now func() time.Time) *CheckInService {
	s.now = now
	return s
}

// CheckIn records today's check-in for userID.  A second call on the same
// calendar day, or one that loses a race with a concurrent call, returns
// ErrAlreadyCheckedIn and changes nothing.
func (s *CheckInService) CheckIn(ctx context.Context, userID uint64) (CheckInResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CheckInResult{}, ErrUserNotFound
		}
		return CheckInResult{}, err
	}

	now := s.now().UTC()
	prev := u.Streak.LastCheckIn
	res := gamification.HandleDailyCheckIn(&u.Progress, now, s.loc)
	if !res.OK {
		return CheckInResult{}, ErrAlreadyCheckedIn
	}

	if err := s.users.UpdateProgress(ctx, u.ID, u.Progress, prev, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return CheckInResult{}, ErrAlreadyCheckedIn
		}
		return CheckInResult{}, err
	}

	s.log.Debug().Uint64("user_id", u.ID).Int("xp", u.XP).Int("streak", u.Streak.Current).Msg("check-in recorded")
	publish(ctx, s.events, s.log, queue.ActivityEvent{
		Type:       queue.EventCheckedIn,
		UserID:     u.ID,
		XP:         u.XP,
		Level:      string(u.Level),
		Streak:     u.Streak.Current,
		OccurredAt: now,
	})
	return CheckInResult{Message: res.Message, Outcome: res.Outcome, Progress: u.Progress}, nil
}
