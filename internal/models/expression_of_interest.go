package models

// EOIStatus enumerates lifecycle states of an expression of interest.
type EOIStatus string

const (
	// EOIStatusActive marks interest awaiting mentor action.
	EOIStatusActive EOIStatus = "EOI"
	// EOIStatusInvited marks interest the mentor has responded to with an invite.
	EOIStatusInvited EOIStatus = "INVITED"
	// EOIStatusWithdrawn is terminal: the mentee retracted the interest.
	EOIStatusWithdrawn EOIStatus = "WITHDRAWN"
	// EOIStatusLocked is terminal: the mentee accepted a different invite.
	EOIStatusLocked EOIStatus = "LOCKED"
	// EOIStatusExpired is terminal: the interest timed out.
	EOIStatusExpired EOIStatus = "EXPIRED"
)

// Active reports whether the status still counts against the mentee's cap.
func (s EOIStatus) Active() bool {
	return s == EOIStatusActive || s == EOIStatusInvited
}

// ExpressionOfInterest records a mentee's declared interest in one mentor.
// Records are never deleted, only status-transitioned.
type ExpressionOfInterest struct {
	BaseModel

	MentorID string `gorm:"type:uuid;not null;index" json:"mentor_id"`
	MenteeID string `gorm:"type:uuid;not null;index" json:"mentee_id"`

	Goal string `gorm:"size:280" json:"goal"`
	Note string `gorm:"size:280" json:"note"`

	// RankedPreference is the mentee's relative priority (1..3) among their own
	// active expressions of interest.
	RankedPreference int `gorm:"not null;default:1" json:"ranked_preference"`

	Status EOIStatus `gorm:"not null;default:EOI;index" json:"status"`

	Invites []Invite `gorm:"foreignKey:EOIID" json:"invites,omitempty"`
}
