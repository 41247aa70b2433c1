package models

// DefaultInviteQuota caps how many non-expired invites a mentor may have in flight.
const DefaultInviteQuota = 8

// MentorProfile holds mentor-facing capacity and directory information.
type MentorProfile struct {
	BaseModel

	UserID   string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Headline string `json:"headline"`
	Bio      string `json:"bio"`
	Skills   string `json:"skills"`

	InviteQuota  int  `gorm:"default:8" json:"invite_quota"`
	AcceptingNew bool `gorm:"default:true" json:"accepting_new"`
}
