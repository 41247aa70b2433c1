package database

import (
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MentorProfile{},
		&models.ExpressionOfInterest{},
		&models.Invite{},
		&models.Application{},
		&models.Mentorship{},
		&models.Notification{},
	)
}

// SeedData ensures every mentor account has a capacity profile. New mentor
// rows created outside the registration flow (imports, manual inserts) would
// otherwise have no invite quota.
func SeedData(db *gorm.DB) error {
	var mentors []models.User
	if err := db.Where("role = ?", models.RoleMentor).Find(&mentors).Error; err != nil {
		return err
	}

	for _, mentor := range mentors {
		profile := models.MentorProfile{
			UserID:       mentor.ID,
			InviteQuota:  models.DefaultInviteQuota,
			AcceptingNew: true,
		}
		if err := db.Where(models.MentorProfile{UserID: mentor.ID}).
			Attrs(profile).
			FirstOrCreate(&models.MentorProfile{}).Error; err != nil {
			return err
		}
	}

	return nil
}
