package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmo2000/mentorafrica/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	// Schema should accept a full entity chain.
	mentor := models.User{Username: "mentor", Email: "mentor@example.com", Password: "x", Role: models.RoleMentor}
	require.NoError(t, db.Create(&mentor).Error)

	eoi := models.ExpressionOfInterest{
		MentorID:         mentor.ID,
		MenteeID:         "11111111-1111-1111-1111-111111111111",
		Goal:             "learn Go",
		RankedPreference: 1,
		Status:           models.EOIStatusActive,
	}
	require.NoError(t, db.Create(&eoi).Error)
	require.NotEmpty(t, eoi.ID)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestSeedDataCreatesMentorProfiles(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	mentor := models.User{Username: "m1", Email: "m1@example.com", Password: "x", Role: models.RoleMentor}
	mentee := models.User{Username: "s1", Email: "s1@example.com", Password: "x", Role: models.RoleMentee}
	require.NoError(t, db.Create(&mentor).Error)
	require.NoError(t, db.Create(&mentee).Error)

	require.NoError(t, SeedData(db))

	var profiles []models.MentorProfile
	require.NoError(t, db.Find(&profiles).Error)
	require.Len(t, profiles, 1)
	require.Equal(t, mentor.ID, profiles[0].UserID)
	require.Equal(t, models.DefaultInviteQuota, profiles[0].InviteQuota)

	// Idempotent.
	require.NoError(t, SeedData(db))
	require.NoError(t, db.Find(&profiles).Error)
	require.Len(t, profiles, 1)
}
