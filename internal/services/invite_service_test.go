package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmo2000/mentorafrica/internal/models"
)

func TestSendInviteMarksEOIInvited(t *testing.T) {
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
	require.Equal(t, models.InviteStatusPending, invite.Status)
	require.Equal(t, mentee.ID, invite.MenteeID)

	var reloaded models.ExpressionOfInterest
	require.NoError(t, db.First(&reloaded, "id = ?", eoi.ID).Error)
	require.Equal(t, models.EOIStatusInvited, reloaded.Status)
}

func TestSendInviteRejectsDuplicate(t *testing.T) {
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

	_, err = invites.Send(context.Background(), SendInviteInput{
		EOIID:          eoi.ID,
		MentorID:       mentor.ID,
		QuotaRemaining: 8,
	})
	require.NoError(t, err)

	_, err = invites.Send(context.Background(), SendInviteInput{
		EOIID:          eoi.ID,
		MentorID:       mentor.ID,
		QuotaRemaining: 7,
	})
	require.ErrorIs(t, err, ErrDuplicateInvite)
}

func TestSendInviteRejectsExhaustedQuota(t *testing.T) {
	db := openTestDB(t)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	_, err = invites.Send(context.Background(), SendInviteInput{
		EOIID:          "some-eoi",
		MentorID:       "some-mentor",
		QuotaRemaining: 0,
	})
	require.ErrorIs(t, err, ErrInviteQuotaExceeded)
}

func TestAcceptInviteLocksSiblingPaths(t *testing.T) {
	db := openTestDB(t)
	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentorA := createTestUser(t, db, "mentor-a", models.RoleMentor)
	mentorB := createTestUser(t, db, "mentor-b", models.RoleMentor)
	mentorC := createTestUser(t, db, "mentor-c", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	eoiA, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentorA.ID, MenteeID: mentee.ID, Goal: "a", RankedPreference: 1,
	})
	require.NoError(t, err)
	eoiB, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentorB.ID, MenteeID: mentee.ID, Goal: "b", RankedPreference: 2,
	})
	require.NoError(t, err)
	eoiC, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentorC.ID, MenteeID: mentee.ID, Goal: "c", RankedPreference: 3,
	})
	require.NoError(t, err)

	inviteA, err := invites.Send(context.Background(), SendInviteInput{
		EOIID: eoiA.ID, MentorID: mentorA.ID, QuotaRemaining: 8,
	})
	require.NoError(t, err)
	inviteB, err := invites.Send(context.Background(), SendInviteInput{
		EOIID: eoiB.ID, MentorID: mentorB.ID, QuotaRemaining: 8,
	})
	require.NoError(t, err)

	accepted, err := invites.Accept(context.Background(), inviteA.ID, mentee.ID)
	require.NoError(t, err)
	require.Equal(t, models.InviteStatusAccepted, accepted.Status)

	// Sibling invite locked.
	var siblingInvite models.Invite
	require.NoError(t, db.First(&siblingInvite, "id = ?", inviteB.ID).Error)
	require.Equal(t, models.InviteStatusLocked, siblingInvite.Status)

	// Sibling EOIs locked; own EOI stays INVITED.
	var siblingB, siblingC, own models.ExpressionOfInterest
	require.NoError(t, db.First(&siblingB, "id = ?", eoiB.ID).Error)
	require.NoError(t, db.First(&siblingC, "id = ?", eoiC.ID).Error)
	require.NoError(t, db.First(&own, "id = ?", eoiA.ID).Error)
	require.Equal(t, models.EOIStatusLocked, siblingB.Status)
	require.Equal(t, models.EOIStatusLocked, siblingC.Status)
	require.Equal(t, models.EOIStatusInvited, own.Status)

	// No acceptance-eligible sibling path remains.
	var pending int64
	require.NoError(t, db.Model(&models.Invite{}).
		Where("mentee_id = ? AND status = ?", mentee.ID, models.InviteStatusPending).
		Count(&pending).Error)
	require.Zero(t, pending)
}

func TestAcceptInviteRequiresPendingStatus(t *testing.T) {
	db := openTestDB(t)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	accepted := createAcceptedInvite(t, db, mentor.ID, mentee.ID)

	_, err = invites.Accept(context.Background(), accepted.ID, mentee.ID)
	require.ErrorIs(t, err, ErrInviteNotPending)
}

func TestAcceptInviteUnknownIDReportsNotFound(t *testing.T) {
	db := openTestDB(t)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	_, err = invites.Accept(context.Background(), "no-such-invite", "mentee")
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestDeclineInviteLeavesSiblingsUntouched(t *testing.T) {
	db := openTestDB(t)
	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentorA := createTestUser(t, db, "mentor-a", models.RoleMentor)
	mentorB := createTestUser(t, db, "mentor-b", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	eoiA, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentorA.ID, MenteeID: mentee.ID, Goal: "a", RankedPreference: 1,
	})
	require.NoError(t, err)
	eoiB, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentorB.ID, MenteeID: mentee.ID, Goal: "b", RankedPreference: 2,
	})
	require.NoError(t, err)

	inviteA, err := invites.Send(context.Background(), SendInviteInput{
		EOIID: eoiA.ID, MentorID: mentorA.ID, QuotaRemaining: 8,
	})
	require.NoError(t, err)
	inviteB, err := invites.Send(context.Background(), SendInviteInput{
		EOIID: eoiB.ID, MentorID: mentorB.ID, QuotaRemaining: 8,
	})
	require.NoError(t, err)

	declined, err := invites.Decline(context.Background(), inviteA.ID, mentee.ID)
	require.NoError(t, err)
	require.Equal(t, models.InviteStatusDeclined, declined.Status)

	var sibling models.Invite
	require.NoError(t, db.First(&sibling, "id = ?", inviteB.ID).Error)
	require.Equal(t, models.InviteStatusPending, sibling.Status)

	var siblingEOI models.ExpressionOfInterest
	require.NoError(t, db.First(&siblingEOI, "id = ?", eoiB.ID).Error)
	require.Equal(t, models.EOIStatusInvited, siblingEOI.Status)
}

func TestRemainingQuotaCountsNonExpiredInvites(t *testing.T) {
	db := openTestDB(t)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	profile := models.MentorProfile{UserID: mentor.ID, InviteQuota: 3, AcceptingNew: true}
	require.NoError(t, db.Create(&profile).Error)

	statuses := []models.InviteStatus{
		models.InviteStatusPending,
		models.InviteStatusAccepted,
		models.InviteStatusExpired, // does not consume quota
	}
	for i, status := range statuses {
		invite := models.Invite{
			EOIID:    "eoi-" + string(rune('a'+i)),
			MentorID: mentor.ID,
			MenteeID: "mentee-" + string(rune('a'+i)),
			Status:   status,
		}
		require.NoError(t, db.Create(&invite).Error)
	}

	remaining, err := invites.RemainingQuota(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.Equal(t, 1, remaining)
}

func TestRemainingQuotaDefaultsWithoutProfile(t *testing.T) {
	db := openTestDB(t)
	invites, err := NewInviteService(db)
	require.NoError(t, err)

	remaining, err := invites.RemainingQuota(context.Background(), "mentor-without-profile")
	require.NoError(t, err)
	require.Equal(t, models.DefaultInviteQuota, remaining)
}

func TestExpireStaleInvites(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eois, err := NewEOIService(db)
	require.NoError(t, err)
	invites, err := NewInviteService(db,
		WithInviteClock(func() time.Time { return current }),
		WithInviteTTL(72*time.Hour),
	)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	eoi, err := eois.Create(context.Background(), CreateEOIInput{
		MentorID: mentor.ID, MenteeID: mentee.ID, Goal: "goal", RankedPreference: 1,
	})
	require.NoError(t, err)

	invite, err := invites.Send(context.Background(), SendInviteInput{
		EOIID: eoi.ID, MentorID: mentor.ID, QuotaRemaining: 8,
	})
	require.NoError(t, err)
	require.NotNil(t, invite.ExpiresAt)

	// Before the horizon nothing expires.
	count, err := invites.ExpireStale(context.Background(), current.Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = invites.ExpireStale(context.Background(), current.Add(100*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	var reloadedInvite models.Invite
	require.NoError(t, db.First(&reloadedInvite, "id = ?", invite.ID).Error)
	require.Equal(t, models.InviteStatusExpired, reloadedInvite.Status)

	var reloadedEOI models.ExpressionOfInterest
	require.NoError(t, db.First(&reloadedEOI, "id = ?", eoi.ID).Error)
	require.Equal(t, models.EOIStatusExpired, reloadedEOI.Status)
}
