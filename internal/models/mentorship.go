package models

import "time"

// MentorshipStatus enumerates lifecycle states of a mentorship pairing.
type MentorshipStatus string

const (
	MentorshipStatusActive    MentorshipStatus = "ACTIVE"
	MentorshipStatusCompleted MentorshipStatus = "COMPLETED"
	MentorshipStatusCancelled MentorshipStatus = "CANCELLED"
)

// Mentorship is the active pairing resulting from an accepted application.
// Creation happens exclusively as a side effect of application acceptance.
type Mentorship struct {
	BaseModel

	MentorID string `gorm:"type:uuid;not null;index" json:"mentor_id"`
	MenteeID string `gorm:"type:uuid;not null;index" json:"mentee_id"`

	Status MentorshipStatus `gorm:"not null;default:ACTIVE;index" json:"status"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
