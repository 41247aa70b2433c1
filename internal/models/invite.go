package models

import "time"

// InviteStatus enumerates lifecycle states of a mentor invite.
type InviteStatus string

const (
	// InviteStatusPending awaits the mentee's decision.
	InviteStatusPending InviteStatus = "PENDING"
	// InviteStatusAccepted is terminal: the mentee accepted.
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	// InviteStatusDeclined is terminal: the mentee declined.
	InviteStatusDeclined InviteStatus = "DECLINED"
	// InviteStatusLocked is terminal: a sibling invite for the same mentee was accepted.
	InviteStatusLocked InviteStatus = "LOCKED"
	// InviteStatusExpired is terminal: the invite timed out or its EOI was withdrawn.
	InviteStatusExpired InviteStatus = "EXPIRED"
)

// Invite is a mentor's offer to a mentee to formally apply, tied to one EOI.
// A non-expired invite consumes one unit of the mentor's invite quota.
type Invite struct {
	BaseModel

	EOIID    string `gorm:"type:uuid;not null;index" json:"eoi_id"`
	MentorID string `gorm:"type:uuid;not null;index" json:"mentor_id"`
	MenteeID string `gorm:"type:uuid;not null;index" json:"mentee_id"`

	Status    InviteStatus `gorm:"not null;default:PENDING;index" json:"status"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`

	EOI *ExpressionOfInterest `gorm:"foreignKey:EOIID" json:"eoi,omitempty"`
}
