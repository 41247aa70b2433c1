package models

import "gorm.io/datatypes"

// ApplicationStatus enumerates lifecycle states of a formal application.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationStatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusAccepted    ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
)

// Valid reports whether the status is one of the recognised values.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusUnderReview,
		ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a mentee's formal submission, requiring a prior accepted invite.
type Application struct {
	BaseModel

	InviteID string `gorm:"type:uuid;not null;index" json:"invite_id"`
	MentorID string `gorm:"type:uuid;not null;index" json:"mentor_id"`
	MenteeID string `gorm:"type:uuid;not null;index" json:"mentee_id"`

	Status ApplicationStatus `gorm:"not null;default:SUBMITTED;index" json:"status"`

	// Answers holds the free-form structured responses submitted by the mentee.
	Answers datatypes.JSON `json:"answers,omitempty"`

	Invite *Invite `gorm:"foreignKey:InviteID" json:"invite,omitempty"`
}
