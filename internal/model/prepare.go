package model

import (
	"strings"
	"time"
)

var avatarColors = []string{
	"#1abc9c", "#2ecc71", "#3498db", "#9b59b6", "#34495e",
	"#16a085", "#27ae60", "#2980b9", "#8e44ad", "#2c3e50",
	"#f1c40f", "#e67e22", "#e74c3c", "#95a5a6", "#f39c12",
	"#d35400", "#c0392b", "#7f8c8d",
}

// NormalizeEmail trims and lowercases an address.  Every lookup and write
// goes through it so the unique index compares like with like.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PrepareUserForSave applies the derived-field transforms that must hold for
// every persisted user: normalized email, trimmed name, avatar from name,
// non-nil profile sections and a fresh UpdatedAt.  Services call it before
// every user write; it returns the transformed copy.
func PrepareUserForSave(u User, now time.Time) User {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	u.Avatar = AvatarFor(u.Name)
	p := &u.Profile
	p.Bio = strings.TrimSpace(p.Bio)
	p.Location = strings.TrimSpace(p.Location)
	p.Website = strings.TrimSpace(p.Website)
	p.Github = strings.TrimSpace(p.Github)
	p.Linkedin = strings.TrimSpace(p.Linkedin)
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Achievements == nil {
		p.Achievements = []Achievement{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []WorkExperience{}
	}
	if u.Level == "" {
		u.Level = LevelNewcomer
	}
	if u.Stars == 0 {
		u.Stars = 1
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return u
}

// AvatarFor derives initials and a stable background color from a name.
func AvatarFor(name string) Avatar {
	initials := Initials(name)
	sum := 0
	for _, r := range initials {
		sum += int(r)
	}
	return Avatar{Initials: initials, BackgroundColor: avatarColors[sum%len(avatarColors)]}
}

// Initials returns up to two upper-case initials: first and last word for
// multi-word names, the first two letters for single words, "U" for empty.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "U"
	case 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	first := []rune(parts[0])[0]
	last := []rune(parts[len(parts)-1])[0]
	return strings.ToUpper(string([]rune{first, last}))
}
