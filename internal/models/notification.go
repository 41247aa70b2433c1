package models

import "time"

// Notification kinds emitted by the matching workflow.
const (
	NotificationKindInviteReceived     = "invite.received"
	NotificationKindInviteAccepted     = "invite.accepted"
	NotificationKindInviteDeclined     = "invite.declined"
	NotificationKindApplicationDecided = "application.decided"
)

// Notification records a workflow event addressed to a user. Delivery beyond
// persistence (email, push) is best effort and handled elsewhere.
type Notification struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind    string `gorm:"not null;index" json:"kind"`
	Message string `gorm:"not null" json:"message"`

	ReadAt *time.Time `json:"read_at,omitempty"`
}
