package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/database/testutil"
	"github.com/tmo2000/mentorafrica/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createAcceptedInvite walks a mentee through EOI → invite → acceptance and
// returns the accepted invite.
func createAcceptedInvite(t *testing.T, db *gorm.DB, mentorID, menteeID string) *models.Invite {
	t.Helper()

	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	eoi, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID:         mentorID,
		MenteeID:         menteeID,
		Goal:             "grow",
		RankedPreference: 1,
	})
	require.NoError(t, err)

	invite, err := invites.Send(context.Background(), SendInviteInput{
		EOIID:          eoi.ID,
		MentorID:       mentorID,
		QuotaRemaining: models.DefaultInviteQuota,
	})
	require.NoError(t, err)

	accepted, err := invites.Accept(context.Background(), invite.ID, menteeID)
	require.NoError(t, err)
	return accepted
}
