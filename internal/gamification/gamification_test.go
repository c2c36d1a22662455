package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/opportunity-hub/internal/model"
)

func TestLevelForXP_Thresholds(t *testing.T) {
	tests := []struct {
		xp    int
		level model.Level
		stars int
	}{
		{0, model.LevelNewcomer, 1},
		{19, model.LevelNewcomer, 1},
		{20, model.LevelExplorer, 2},
		{49, model.LevelExplorer, 2},
		{50, model.LevelContributor, 3},
		{100, model.LevelCollaborator, 4},
		{199, model.LevelCollaborator, 4},
		{200, model.LevelAchiever, 5},
		{400, model.LevelExpert, 6},
		{699, model.LevelExpert, 6},
		{700, model.LevelLegend, 7},
		{100000, model.LevelLegend, 7},
	}
	for _, tt := range tests {
		level, stars := LevelForXP(tt.xp)
		assert.Equal(t, tt.level, level, "xp=%d", tt.xp)
		assert.Equal(t, tt.stars, stars, "xp=%d", tt.xp)
	}
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prevLevel, prevStars := LevelForXP(0)
	for xp := 1; xp <= 1000; xp++ {
		level, stars := LevelForXP(xp)
		require.GreaterOrEqual(t, level.Rank(), prevLevel.Rank(), "xp=%d", xp)
		require.GreaterOrEqual(t, stars, prevStars, "xp=%d", xp)
		// stars and level rank move together
		require.Equal(t, stars, level.Rank(), "xp=%d", xp)
		prevLevel, prevStars = level, stars
	}
}

func TestUpdateLevel_IgnoresHistory(t *testing.T) {
	p := model.Progress{XP: 60, Level: model.LevelLegend, Stars: 7}
	UpdateLevel(&p)
	assert.Equal(t, model.LevelContributor, p.Level)
	assert.Equal(t, 3, p.Stars)
}

func day(d, h int) time.Time {
	return time.Date(2026, time.March, d, h, 0, 0, 0, time.UTC)
}

func TestHandleDailyCheckIn_FirstThenSameDayThenNextDay(t *testing.T) {
	p := model.NewProgress()

	res := HandleDailyCheckIn(&p, day(10, 9), time.UTC)
	require.True(t, res.OK)
	assert.Equal(t, OutcomeFirst, res.Outcome)
	assert.Equal(t, "First check-in completed!", res.Message)
	assert.Equal(t, 2, p.XP)
	assert.Equal(t, model.LevelNewcomer, p.Level)
	assert.Equal(t, 1, p.Stars)
	assert.Equal(t, 1, p.Streak.Current)
	assert.Equal(t, 1, p.Streak.Longest)

	before := p
	last := *p.Streak.LastCheckIn
	res = HandleDailyCheckIn(&p, day(10, 23), time.UTC)
	assert.False(t, res.OK)
	assert.Equal(t, "Already checked in today.", res.Message)
	assert.Equal(t, before.XP, p.XP)
	assert.Equal(t, before.Streak.Current, p.Streak.Current)
	assert.Equal(t, last, *p.Streak.LastCheckIn)

	res = HandleDailyCheckIn(&p, day(11, 0), time.UTC)
	require.True(t, res.OK)
	assert.Equal(t, "Streak continued!", res.Message)
	assert.Equal(t, 2, p.Streak.Current)
	assert.Equal(t, 2, p.Streak.Longest)
	assert.Equal(t, 4, p.XP)
}

func TestHandleDailyCheckIn_GapResetsCurrentKeepsLongest(t *testing.T) {
	last := day(1, 8)
	p := model.Progress{XP: 10, Level: model.LevelNewcomer, Stars: 1,
		Streak: model.Streak{Current: 5, Longest: 5, LastCheckIn: &last}}

	res := HandleDailyCheckIn(&p, day(3, 8), time.UTC)
	require.True(t, res.OK)
	assert.Equal(t, OutcomeRestarted, res.Outcome)
	assert.Equal(t, "New streak started!", res.Message)
	assert.Equal(t, 1, p.Streak.Current)
	assert.Equal(t, 5, p.Streak.Longest)
	assert.Equal(t, 12, p.XP)
}

func TestHandleDailyCheckIn_LevelUpOnThreshold(t *testing.T) {
	last := day(1, 8)
	p := model.Progress{XP: 18, Level: model.LevelNewcomer, Stars: 1,
		Streak: model.Streak{Current: 1, Longest: 1, LastCheckIn: &last}}

	HandleDailyCheckIn(&p, day(2, 8), time.UTC)
	assert.Equal(t, 20, p.XP)
	assert.Equal(t, model.LevelExplorer, p.Level)
	assert.Equal(t, 2, p.Stars)
}

func TestHandleDailyCheckIn_CalendarDaysNotHours(t *testing.T) {
	last := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	p := model.Progress{Streak: model.Streak{Current: 1, Longest: 1, LastCheckIn: &last}}

	res := HandleDailyCheckIn(&p, last.Add(2*time.Minute), time.UTC)
	assert.Equal(t, OutcomeContinued, res.Outcome)

	// 47 hours later but two calendar days
	last = time.Date(2026, time.March, 5, 0, 30, 0, 0, time.UTC)
	p.Streak.LastCheckIn = &last
	res = HandleDailyCheckIn(&p, last.Add(47*time.Hour), time.UTC)
	assert.Equal(t, OutcomeRestarted, res.Outcome)
}

func TestHandleDailyCheckIn_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	// 22:00 UTC on the 1st is 01:00 on the 2nd in loc
	last := time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC) // 23:00 local, day 1
	p := model.Progress{Streak: model.Streak{Current: 1, Longest: 1, LastCheckIn: &last}}

	res := HandleDailyCheckIn(&p, time.Date(2026, time.March, 1, 22, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, OutcomeContinued, res.Outcome)
}

func TestHandleDailyCheckIn_FutureLastCheckInIsRejected(t *testing.T) {
	last := day(20, 8)
	p := model.Progress{Streak: model.Streak{Current: 3, Longest: 4, LastCheckIn: &last}}

	res := HandleDailyCheckIn(&p, day(19, 8), time.UTC)
	assert.False(t, res.OK)
	assert.Equal(t, 3, p.Streak.Current)
	assert.Equal(t, 0, p.XP)
}

func TestHandleDailyCheckIn_LongestInvariant(t *testing.T) {
	p := model.NewProgress()
	// pattern of consecutive days and gaps
	days := []int{1, 2, 3, 5, 6, 10, 11, 12, 13, 20}
	for _, d := range days {
		HandleDailyCheckIn(&p, day(d, 12), time.UTC)
		require.LessOrEqual(t, p.Streak.Current, p.Streak.Longest, "day %d", d)
	}
	assert.Equal(t, 4, p.Streak.Longest)
	assert.Equal(t, 1, p.Streak.Current)
	assert.Equal(t, len(days)*CheckInXP, p.XP)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day(1, 0), day(1, 23), time.UTC))
	assert.Equal(t, 1, DaysBetween(day(1, 23), day(2, 0), time.UTC))
	assert.Equal(t, 9, DaysBetween(day(1, 12), day(10, 1), time.UTC))
	assert.Equal(t, -1, DaysBetween(day(2, 0), day(1, 0), time.UTC))
}

func TestAwardXP_IgnoresNegative(t *testing.T) {
	p := model.Progress{XP: 25}
	AwardXP(&p, -10)
	assert.Equal(t, 25, p.XP)
	assert.Equal(t, model.LevelExplorer, p.Level)
}
