package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/testutil"
)

type decision struct {
	id       uint
	approved bool
}

type recordingNotifier struct {
	decisions []decision
}

func (n *recordingNotifier) ModerationDecided(_ context.Context, sub *models.SongSubmission, approved bool) error {
	n.decisions = append(n.decisions, decision{sub.ID, approved})
	return nil
}

func TestApproveAndReject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))
	sub := testutil.TestSubmission(t, db, testutil.WithArtist("Tems", "Free Mind"))

	notice, err := svc.Approve(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, `Song "Free Mind" by Tems has been approved`, notice)

	got, err := svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	notice, err = svc.Reject(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, `Song "Free Mind" by Tems has been rejected`, notice)

	got, err = svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)
}

func TestApprovalLeavesPaymentUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))
	paidAt := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	sub := testutil.TestSubmission(t, db, testutil.Paid("FLW-1001", paidAt))

	_, err := svc.Approve(context.Background(), sub.ID)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Equal(t, "FLW-1001", got.TransactionReference)
	assert.True(t, got.PaymentConsistent())
}

func TestUpdateNotesReplacesText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))
	sub := testutil.TestSubmission(t, db)

	_, err := svc.UpdateNotes(context.Background(), sub.ID, "strong hook")
	require.NoError(t, err)
	got, err := svc.UpdateNotes(context.Background(), sub.ID, "send to playlist team")
	require.NoError(t, err)
	assert.Equal(t, "send to playlist team", got.Notes)
}

func TestModerationNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))

	_, err := svc.Approve(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.Reject(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.UpdateNotes(context.Background(), 42, "x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestModerationNotifiesSubmitter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	sub := testutil.TestSubmission(t, db)

	_, err := svc.Approve(context.Background(), sub.ID)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), sub.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), 9999)
	require.Error(t, err)

	assert.Equal(t, []decision{{sub.ID, true}, {sub.ID, false}}, notifier.decisions)
}
