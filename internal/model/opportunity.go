package model

import "time"

// Opportunity categories and statuses.
var (
	OpportunityCategories = []string{"scholarship", "internship", "job", "fellowship", "competition"}
	OpportunityStatuses   = []string{"active", "closed"}
)

// Opportunity is a listing in the public catalogue.  Only admins create,
// update or delete them.
type Opportunity struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Organization   string    `json:"organization"`
	Location       string    `json:"location"`
	Deadline       time.Time `json:"deadline"`
	Requirements   []string  `json:"requirements"`
	Benefits       []string  `json:"benefits"`
	ApplicationURL string    `json:"applicationUrl"`
	IsFeatured     bool      `json:"isFeatured"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
