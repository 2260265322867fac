package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/testutil"
)

func TestSubmissionRepository_CreateAndGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db).WithContext(context.Background())

	pkg := testutil.TestPackage(t, db, "Basic")
	s := &models.SongSubmission{
		ArtistName: "Tems",
		SongTitle:  "Free Mind",
		Genre:      models.GenreRnB,
		LinkType:   models.LinkTypeYouTube,
		MusicLink:  "https://youtu.be/abc",
		Email:      "tems@example.com",
		PackageID:  &pkg.ID,
	}
	require.NoError(t, repo.Create(s))
	assert.NotZero(t, s.ID)

	found, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, found.PaymentStatus)
	assert.False(t, found.SubmissionDate.IsZero())
	require.NotNil(t, found.Package)
	assert.Equal(t, "Basic", found.Package.Name)
}

func TestSubmissionRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)

	_, err := repo.GetByID(12345)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSubmissionRepository_UpdateFieldsInTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)
	s := testutil.TestSubmission(t, db)

	now := time.Now()
	err := repo.Transaction(func(tx SubmissionRepository) error {
		locked, err := tx.GetByIDForUpdate(s.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, models.PaymentStatusPending, locked.PaymentStatus)
		return tx.UpdateFields(s.ID, map[string]interface{}{
			"payment_status":        models.PaymentStatusCompleted,
			"transaction_reference": "flw-1",
			"payment_date":          now,
		})
	})
	require.NoError(t, err)

	found, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, found.PaymentStatus)
	assert.Equal(t, "flw-1", found.TransactionReference)
	require.NotNil(t, found.PaymentDate)
	assert.True(t, found.PaymentConsistent())
}

func TestSubmissionRepository_TransactionRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)
	s := testutil.TestSubmission(t, db)

	boom := errors.New("boom")
	err := repo.Transaction(func(tx SubmissionRepository) error {
		if err := tx.UpdateFields(s.ID, map[string]interface{}{"payment_status": models.PaymentStatusFailed}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, found.PaymentStatus)
}

func TestSubmissionRepository_UpdateFields_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)

	err := repo.UpdateFields(777, map[string]interface{}{"notes": "x"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSubmissionRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)
	now := time.Now()

	testutil.TestSubmission(t, db, testutil.WithArtist("Asa", "Fire on the Mountain"), testutil.WithGenre(models.GenreAlternative), testutil.Approved(), testutil.WithSubmittedAt(now.Add(-3*time.Hour)))
	testutil.TestSubmission(t, db, testutil.WithArtist("Wizkid", "Essence"), testutil.Paid("flw-9", now), testutil.WithSubmittedAt(now.Add(-2*time.Hour)))
	testutil.TestSubmission(t, db, testutil.WithArtist("Rema", "Calm Down"), testutil.WithEmail("rema@mavins.com"), testutil.WithSubmittedAt(now.Add(-1*time.Hour)))

	tests := []struct {
		name   string
		filter SubmissionFilter
		want   []string
	}{
		{name: "all newest first", filter: SubmissionFilter{}, want: []string{"Rema", "Wizkid", "Asa"}},
		{name: "approved", filter: SubmissionFilter{Status: FilterApproved}, want: []string{"Asa"}},
		{name: "pending approval", filter: SubmissionFilter{Status: FilterPending}, want: []string{"Rema", "Wizkid"}},
		{name: "paid", filter: SubmissionFilter{Status: FilterPaid}, want: []string{"Wizkid"}},
		{name: "unpaid", filter: SubmissionFilter{Status: FilterUnpaid}, want: []string{"Rema", "Asa"}},
		{name: "genre", filter: SubmissionFilter{Genre: models.GenreAlternative}, want: []string{"Asa"}},
		{name: "search title", filter: SubmissionFilter{Search: "essence"}, want: []string{"Wizkid"}},
		{name: "search email", filter: SubmissionFilter{Search: "mavins"}, want: []string{"Rema"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(tc.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, s := range got {
				names = append(names, s.ArtistName)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestSubmissionRepository_ListPayments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)
	now := time.Now()

	testutil.TestSubmission(t, db, testutil.WithArtist("Asa", "Jailer"))
	testutil.TestSubmission(t, db, testutil.WithArtist("Wizkid", "Essence"), testutil.Paid("flw-old", now.Add(-48*time.Hour)))
	testutil.TestSubmission(t, db, testutil.WithArtist("Tems", "Higher"), testutil.Paid("flw-new", now))

	all, err := repo.ListPayments(PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Tems", all[0].ArtistName)
	assert.Equal(t, "Wizkid", all[1].ArtistName)
	assert.Equal(t, "Asa", all[2].ArtistName)

	byRef, err := repo.ListPayments(PaymentFilter{Search: "flw-old"})
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	assert.Equal(t, "Wizkid", byRef[0].ArtistName)

	pending, err := repo.ListPayments(PaymentFilter{Status: models.PaymentStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Asa", pending[0].ArtistName)
}

func TestSubmissionRepository_Aggregates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSubmissionRepository(db)
	now := time.Now()

	basic := testutil.TestPackage(t, db, "Basic", testutil.WithPrice(5000))
	premium := testutil.TestPackage(t, db, "Premium", testutil.WithPrice(15000))

	testutil.TestSubmission(t, db, testutil.WithPackage(basic), testutil.Paid("a", now), testutil.WithGenre(models.GenrePop))
	testutil.TestSubmission(t, db, testutil.WithPackage(premium), testutil.Paid("b", now.Add(-40*24*time.Hour)), testutil.WithGenre(models.GenrePop), testutil.Approved())
	testutil.TestSubmission(t, db, testutil.WithPackage(premium), testutil.WithPaymentStatus(models.PaymentStatusFailed), testutil.WithGenre(models.GenreJazz))

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	approved, err := repo.CountByApproval(true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approved)

	revenue, err := repo.TotalRevenue()
	require.NoError(t, err)
	assert.InDelta(t, 20000.0, revenue, 0.001)

	paid, err := repo.PaidSince(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.InDelta(t, 5000.0, paid[0].Price, 0.001)

	genres, err := repo.CountByGenre()
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Value: models.GenrePop, Count: 2}, {Value: models.GenreJazz, Count: 1}}, genres)

	statuses, err := repo.CountByPaymentStatus()
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Value: models.PaymentStatusCompleted, Count: 2}, {Value: models.PaymentStatusFailed, Count: 1}}, statuses)

	recent, err := repo.Recent(2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	submitted, err := repo.SubmittedSince(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, submitted, 3)
}
