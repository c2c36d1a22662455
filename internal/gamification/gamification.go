// Package gamification holds the XP, level and streak rules.  Everything here
// is a pure transition on model.Progress; persistence is the caller's job.
package gamification

import (
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

// CheckInXP is awarded for every accepted daily check-in.
const CheckInXP = 2

type threshold struct {
	xp    int
	level model.Level
	stars int
}

// Ordered from the highest threshold down; the first match wins.
var thresholds = []threshold{
	{700, model.LevelLegend, 7},
	{400, model.LevelExpert, 6},
	{200, model.LevelAchiever, 5},
	{100, model.LevelCollaborator, 4},
	{50, model.LevelContributor, 3},
	{20, model.LevelExplorer, 2},
}

// LevelForXP maps an XP total to its level and star count.
func LevelForXP(xp int) (model.Level, int) {
	for _, t := range thresholds {
		if xp >= t.xp {
			return t.level, t.stars
		}
	}
	return model.LevelNewcomer, 1
}

// UpdateLevel re-derives Level and Stars from XP.
func UpdateLevel(p *model.Progress) {
	p.Level, p.Stars = LevelForXP(p.XP)
}

// AwardXP adds n experience points (negative n is ignored) and re-derives the level.
func AwardXP(p *model.Progress, n int) {
	if n > 0 {
		p.XP += n
	}
	UpdateLevel(p)
}

// Outcome classifies a check-in attempt.
type Outcome int

const (
	OutcomeAlreadyCheckedIn Outcome = iota
	OutcomeFirst
	OutcomeContinued
	OutcomeRestarted
)

// Result is returned by HandleDailyCheckIn.  OK is false only for a repeat
// check-in on the same calendar day, in which case nothing was mutated.
type Result struct {
	OK      bool
	Outcome Outcome
	Message string
}

// HandleDailyCheckIn applies one check-in at now.  Days are compared as
// calendar dates in loc, so 23:59 followed by 00:01 counts as consecutive.
func HandleDailyCheckIn(p *model.Progress, now time.Time, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	s := &p.Streak

	var res Result
	if s.LastCheckIn == nil {
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		res = Result{OK: true, Outcome: OutcomeFirst, Message: "First check-in completed!"}
	} else {
		switch days := DaysBetween(*s.LastCheckIn, now, loc); {
		case days <= 0:
			return Result{OK: false, Outcome: OutcomeAlreadyCheckedIn, Message: "Already checked in today."}
		case days == 1:
			s.Current++
			if s.Current > s.Longest {
				s.Longest = s.Current
			}
			res = Result{OK: true, Outcome: OutcomeContinued, Message: "Streak continued!"}
		default:
			s.Current = 1
			res = Result{OK: true, Outcome: OutcomeRestarted, Message: "New streak started!"}
		}
	}

	checkedAt := now
	s.LastCheckIn = &checkedAt
	AwardXP(p, CheckInXP)
	return res
}

// DaysBetween counts whole calendar days from a to b in loc.  It is negative
// when b falls on an earlier date than a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	// civil dates pinned to UTC midnight so DST shifts cannot skew the division
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
