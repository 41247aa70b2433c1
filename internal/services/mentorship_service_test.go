package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/models"
)

func createActiveMentorship(t *testing.T, db *gorm.DB, mentorID, menteeID string) *models.Mentorship {
	t.Helper()

	mentorship := &models.Mentorship{
		MentorID:  mentorID,
		MenteeID:  menteeID,
		Status:    models.MentorshipStatusActive,
		StartedAt: time.Now(),
	}
	require.NoError(t, db.Create(mentorship).Error)
	return mentorship
}

func TestMentorshipHasActive(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewMentorshipService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)

	active, err := svc.HasActive(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.False(t, active)

	createActiveMentorship(t, db, mentor.ID, mentee.ID)

	active, err = svc.HasActive(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.True(t, active)
}

func TestMentorshipCompleteStampsEndTime(t *testing.T) {
	db := openTestDB(t)
	ended := time.Date(2026, 6, 30, 17, 0, 0, 0, time.UTC)
	svc, err := NewMentorshipService(db,
		WithMentorshipClock(func() time.Time { return ended }))
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	mentorship := createActiveMentorship(t, db, mentor.ID, mentee.ID)

	closed, err := svc.Complete(context.Background(), mentorship.ID, mentor.ID)
	require.NoError(t, err)
	require.Equal(t, models.MentorshipStatusCompleted, closed.Status)
	require.NotNil(t, closed.EndedAt)
	require.True(t, closed.EndedAt.Equal(ended))

	// Already closed: a second attempt reports not found.
	_, err = svc.Complete(context.Background(), mentorship.ID, mentor.ID)
	require.ErrorIs(t, err, ErrMentorshipNotFound)
}

func TestMentorshipCancelByEitherParticipant(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewMentorshipService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	mentorship := createActiveMentorship(t, db, mentor.ID, mentee.ID)

	closed, err := svc.Cancel(context.Background(), mentorship.ID, mentee.ID)
	require.NoError(t, err)
	require.Equal(t, models.MentorshipStatusCancelled, closed.Status)
}

func TestMentorshipCloseRejectsOutsiders(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewMentorshipService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	mentee := createTestUser(t, db, "mentee", models.RoleMentee)
	stranger := createTestUser(t, db, "stranger", models.RoleMentee)
	mentorship := createActiveMentorship(t, db, mentor.ID, mentee.ID)

	_, err = svc.Complete(context.Background(), mentorship.ID, stranger.ID)
	require.ErrorIs(t, err, ErrMentorshipNotFound)

	var reloaded models.Mentorship
	require.NoError(t, db.First(&reloaded, "id = ?", mentorship.ID).Error)
	require.Equal(t, models.MentorshipStatusActive, reloaded.Status)
}

func TestMentorshipListsSplitByRole(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewMentorshipService(db)
	require.NoError(t, err)

	mentor := createTestUser(t, db, "mentor", models.RoleMentor)
	menteeA := createTestUser(t, db, "mentee-a", models.RoleMentee)
	menteeB := createTestUser(t, db, "mentee-b", models.RoleMentee)

	createActiveMentorship(t, db, mentor.ID, menteeA.ID)
	createActiveMentorship(t, db, mentor.ID, menteeB.ID)

	mentoring, err := svc.ListForMentor(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.Len(t, mentoring, 2)

	mine, err := svc.ListForMentee(context.Background(), menteeA.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, mentor.ID, mine[0].MentorID)
}
