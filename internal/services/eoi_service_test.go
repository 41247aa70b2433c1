package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmo2000/mentorafrica/internal/models"
)

func TestEOICreateEnforcesActiveCap(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	mentors := []*models.User{
		createTestUser(t, db, "mentor-a", models.RoleMentor),
		createTestUser(t, db, "mentor-b", models.RoleMentor),
		createTestUser(t, db, "mentor-c", models.RoleMentor),
	}

	for i, mentor := range mentors {
		_, err := svc.Create(context.Background(), CreateEOIInput{
			MentorID:         mentor.ID,
			MenteeID:         mentee.ID,
			Goal:             "learn distributed systems",
			RankedPreference: i + 1,
		})
		require.NoError(t, err)
	}

	mentorD := createTestUser(t, db, "mentor-d", models.RoleMentor)
	_, err = svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentorD.ID,
		MenteeID:         mentee.ID,
		Goal:             "one too many",
		RankedPreference: 1,
	})
	require.ErrorIs(t, err, ErrEOIQuotaExceeded)

	// Terminal EOIs free up capacity.
	var first models.ExpressionOfInterest
	require.NoError(t, db.Where("mentor_id = ?", mentors[0].ID).First(&first).Error)
	_, err = svc.Withdraw(context.Background(), first.ID, mentee.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentorD.ID,
		MenteeID:         mentee.ID,
		Goal:             "now it fits",
		RankedPreference: 1,
	})
	require.NoError(t, err)
}

func TestEOICreateRejectsDuplicateMentor(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	_, err = svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "first",
		RankedPreference: 1,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "second",
		RankedPreference: 2,
	})
	require.ErrorIs(t, err, ErrDuplicateInterest)

	// A withdrawn EOI no longer blocks renewed interest in the same mentor.
	var eoi models.ExpressionOfInterest
	require.NoError(t, db.Where("mentor_id = ? AND mentee_id = ?", mentor.ID, mentee.ID).First(&eoi).Error)
	_, err = svc.Withdraw(context.Background(), eoi.ID, mentee.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "renewed",
		RankedPreference: 1,
	})
	require.NoError(t, err)
}

func TestEOICreateTruncatesOversizedText(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	long := strings.Repeat("g", 500)
	eoi, err := svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             long,
		Note:             long,
		RankedPreference: 1,
	})
	require.NoError(t, err)
	require.Len(t, eoi.Goal, maxTextLength)
	require.Len(t, eoi.Note, maxTextLength)
}

func TestEOICreateValidatesRankedPreference(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	for _, rank := range []int{0, 4, -1} {
		_, err := svc.Create(context.Background(), CreateEOIInput{
			MentorID:         "mentor",
			MenteeID:         "mentee",
			Goal:             "goal",
			RankedPreference: rank,
		})
		require.Error(t, err, "rank %d should be rejected", rank)
	}
}

func TestEOIListForMentorHidesRetractedInterest(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)

	statuses := []models.EOIStatus{
		models.EOIStatusActive,
		models.EOIStatusInvited,
		models.EOIStatusLocked,
		models.EOIStatusWithdrawn,
		models.EOIStatusExpired,
	}
	for i, status := range statuses {
		eoi := models.ExpressionOfInterest{
			MentorID:         mentor.ID,
			MenteeID:         "mentee-" + string(rune('a'+i)),
			Goal:             "goal",
			RankedPreference: 1,
			Status:           status,
		}
		require.NoError(t, db.Create(&eoi).Error)
	}

	visible, err := svc.ListForMentor(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.Len(t, visible, 3)
	for _, eoi := range visible {
		require.NotEqual(t, models.EOIStatusWithdrawn, eoi.Status)
		require.NotEqual(t, models.EOIStatusExpired, eoi.Status)
	}
}

func TestEOIListForMenteeReturnsFullHistory(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	for i, status := range []models.EOIStatus{models.EOIStatusActive, models.EOIStatusWithdrawn} {
		eoi := models.ExpressionOfInterest{
			MentorID:         "mentor-" + string(rune('a'+i)),
			MenteeID:         mentee.ID,
			Goal:             "goal",
			RankedPreference: 1,
			Status:           status,
		}
		require.NoError(t, db.Create(&eoi).Error)
	}

	all, err := svc.ListForMentee(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEOIWithdrawCascadesInviteExpiry(t *testing.T) {
	db := openTestDB(t)
	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	eoi, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "goal",
		RankedPreference: 1,
	})
	require.NoError(t, err)

	invite, err := invites.Send(context.Background(), SendInviteInput{
		EOIID:          eoi.ID,
		MentorID:       mentor.ID,
		QuotaRemaining: 8,
	})
	require.NoError(t, err)

	withdrawn, err := eois.Withdraw(context.Background(), eoi.ID, mentee.ID)
	require.NoError(t, err)
	require.Equal(t, models.EOIStatusWithdrawn, withdrawn.Status)

	var reloaded models.Invite
	require.NoError(t, db.First(&reloaded, "id = ?", invite.ID).Error)
	require.Equal(t, models.InviteStatusExpired, reloaded.Status)

	// Withdrawing again reports not found.
	_, err = eois.Withdraw(context.Background(), eoi.ID, mentee.ID)
	require.ErrorIs(t, err, ErrEOINotFound)
}

func TestEOIWithdrawRequiresOwnership(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewEOIService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	stranger := createTestUser(t, db, "stranger", models.RoleMentee)

	eoi, err := svc.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "goal",
		RankedPreference: 1,
	})
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), eoi.ID, stranger.ID)
	require.ErrorIs(t, err, ErrEOINotFound)
}

func TestSendInviteAgainstWithdrawnEOIFailsPrecondition(t *testing.T) {
	db := openTestDB(t)
	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	eoi, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID:         mentor.ID,
		MenteeID:         mentee.ID,
		Goal:             "goal",
		RankedPreference: 1,
	})
	require.NoError(t, err)

	_, err = eois.Withdraw(context.Background(), eoi.ID, mentee.ID)
	require.NoError(t, err)

	_, err = invites.Send(context.Background(), SendInviteInput{
		EOIID:          eoi.ID,
		MentorID:       mentor.ID,
		QuotaRemaining: 8,
	})
	require.ErrorIs(t, err, ErrEOINotActionable)
}
