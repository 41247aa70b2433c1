package models

import "time"

// Role names recognised by the platform.
const (
	RoleMentee = "mentee"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// User describes a platform account. Mentors additionally carry a MentorProfile.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	DisplayName string `json:"display_name"`
	Role        string `gorm:"not null;default:mentee;index" json:"role"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	MentorProfile *MentorProfile `gorm:"foreignKey:UserID" json:"mentor_profile,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

// IsMentor reports whether the account may act as a mentor.
func (u *User) IsMentor() bool {
	return u.Role == RoleMentor || u.Role == RoleAdmin
}
