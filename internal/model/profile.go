package model

import "time"

// Skill levels accepted by the profile endpoints.
var SkillLevels = []string{"Beginner", "Intermediate", "Advanced", "Expert"}

type Skill struct {
	Name              string   `json:"name" validate:"required"`
	Level             string   `json:"level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	YearsOfExperience *float64 `json:"yearsOfExperience,omitempty" validate:"omitempty,min=0"`
}

type Project struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description" validate:"required"`
	Technologies []string   `json:"technologies" validate:"required"`
	URL          string     `json:"url,omitempty" validate:"omitempty,url"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	IsOngoing    bool       `json:"isOngoing"`
}

type Achievement struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Issuer      string    `json:"issuer,omitempty"`
	URL         string    `json:"url,omitempty" validate:"omitempty,url"`
}

type Education struct {
	Institution  string     `json:"institution" validate:"required"`
	Degree       string     `json:"degree" validate:"required"`
	FieldOfStudy string     `json:"fieldOfStudy,omitempty"`
	StartDate    time.Time  `json:"startDate" validate:"required"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	IsOngoing    bool       `json:"isOngoing"`
	Description  string     `json:"description,omitempty"`
}

type WorkExperience struct {
	Company     string     `json:"company" validate:"required"`
	Position    string     `json:"position" validate:"required"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsOngoing   bool       `json:"isOngoing"`
	Description string     `json:"description,omitempty"`
}

// Profile groups the free-form sections of a user's public profile.
type Profile struct {
	Bio            string           `json:"bio,omitempty"`
	Location       string           `json:"location,omitempty"`
	Website        string           `json:"website,omitempty"`
	Github         string           `json:"github,omitempty"`
	Linkedin       string           `json:"linkedin,omitempty"`
	Skills         []Skill          `json:"skills"`
	Projects       []Project        `json:"projects"`
	Achievements   []Achievement    `json:"achievements"`
	Education      []Education      `json:"education"`
	WorkExperience []WorkExperience `json:"workExperience"`
}
