package model

import "time"

// Level is a user's rank in the gamification ladder.  The zero value is not a
// valid level; new users start at LevelNewcomer.
type Level string

const (
	LevelNewcomer     Level = "Newcomer"
	LevelExplorer     Level = "Explorer"
	LevelContributor  Level = "Contributor"
	LevelCollaborator Level = "Collaborator"
	LevelAchiever     Level = "Achiever"
	LevelExpert       Level = "Expert"
	LevelLegend       Level = "Legend"
)

// Rank returns the position of the level in the ladder (Newcomer = 1).
// Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelNewcomer:
		return 1
	case LevelExplorer:
		return 2
	case LevelContributor:
		return 3
	case LevelCollaborator:
		return 4
	case LevelAchiever:
		return 5
	case LevelExpert:
		return 6
	case LevelLegend:
		return 7
	}
	return 0
}

// Streak tracks consecutive calendar-day check-ins.  Current never exceeds
// Longest.  LastCheckIn is nil until the first check-in.
type Streak struct {
	Current     int        `json:"current"`
	Longest     int        `json:"longest"`
	LastCheckIn *time.Time `json:"lastCheckIn,omitempty"`
}

// Progress is the gamification state attached to a user.  Level and Stars
// are derived from XP and only change through the gamification package.
type Progress struct {
	XP     int    `json:"xp"`
	Level  Level  `json:"level"`
	Stars  int    `json:"stars"`
	Streak Streak `json:"streak"`
}

// NewProgress is the state every account starts with.
func NewProgress() Progress {
	return Progress{XP: 0, Level: LevelNewcomer, Stars: 1}
}

// Avatar is derived from the user's name on every save.
type Avatar struct {
	Initials        string `json:"initials"`
	BackgroundColor string `json:"backgroundColor"`
}

// User mirrors the `users` table.  Profile sections are stored as JSON
// columns.  PasswordHash is never serialized.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Avatar       Avatar    `json:"avatar"`
	Profile      Profile   `json:"profile"`
	Progress               // xp, level, stars, streak
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Admin is a separate principal with its own credentials.  Inactive admins
// can still be looked up but are refused by the admin middleware.
type Admin struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the opaque token is stored; the raw value is handed to the
// client once.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// Usable reports whether the token may still mint access tokens at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
