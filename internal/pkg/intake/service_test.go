package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/metadata"
	"github.com/ManuelReschke/SongPitch/internal/testutil"
)

type stubLookup struct {
	details *metadata.Details
	calls   int
}

func (l *stubLookup) Fetch(context.Context, string, string) *metadata.Details {
	l.calls++
	return l.details
}

type stubCaptcha struct {
	enabled bool
	err     error
}

func (c stubCaptcha) Enabled() bool { return c.enabled }
func (c stubCaptcha) Verify(context.Context, string) error { return c.err }

func validInput() Input {
	return Input{
		ArtistName: "Asake",
		SongTitle:  "Lonely At The Top",
		Genre:      models.GenreHipHop,
		LinkType:   models.LinkTypeSpotify,
		MusicLink:  "https://open.spotify.com/track/abc123",
		Email:      "asake@example.com",
		Terms:      true,
	}
}

func newService(t *testing.T, lookup Lookup, captcha Captcha) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewService(repository.NewRepositories(db), lookup, captcha, "site-key"), db
}

func TestSubmit_StoresPendingSubmission(t *testing.T) {
	svc, db := newService(t, nil, nil)
	pkg := testutil.TestPackage(t, db, "Basic")

	in := validInput()
	in.PackageID = pkg.ID
	in.ArtistName = "  Asake  "

	sub, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, "Asake", sub.ArtistName)
	assert.Equal(t, models.PaymentStatusPending, sub.PaymentStatus)
	require.NotNil(t, sub.PackageID)
	assert.Equal(t, pkg.ID, *sub.PackageID)
	assert.False(t, sub.IsApproved)
	assert.Empty(t, sub.TransactionReference)

	var stored models.SongSubmission
	require.NoError(t, db.First(&stored, sub.ID).Error)
	assert.False(t, stored.SubmissionDate.IsZero())
}

func TestSubmit_DropsUnknownOrInactivePackage(t *testing.T) {
	svc, db := newService(t, nil, nil)
	retired := testutil.TestPackage(t, db, "Retired", testutil.Inactive())

	for _, id := range []uint{9999, retired.ID} {
		in := validInput()
		in.PackageID = id
		sub, err := svc.Submit(context.Background(), in)
		require.NoError(t, err)
		assert.Nil(t, sub.PackageID)
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{name: "missing artist", mutate: func(in *Input) { in.ArtistName = "" }, field: "artist_name"},
		{name: "bad genre", mutate: func(in *Input) { in.Genre = "polka" }, field: "genre"},
		{name: "bad link type", mutate: func(in *Input) { in.LinkType = "soundcloud" }, field: "link_type"},
		{name: "bad email", mutate: func(in *Input) { in.Email = "nope" }, field: "email"},
		{name: "no link or file", mutate: func(in *Input) { in.MusicLink = "" }, field: "music_link"},
		{name: "invalid url", mutate: func(in *Input) { in.MusicLink = "spotify track" }, field: "music_link"},
		{name: "long phone", mutate: func(in *Input) { in.Phone = "+234 800 000 0000 0000" }, field: "phone"},
		{name: "terms not accepted", mutate: func(in *Input) { in.Terms = false }, field: "terms"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := newService(t, nil, nil)
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			require.ErrorIs(t, err, apperrors.ErrValidation)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)

			var count int64
			db.Model(&models.SongSubmission{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestSubmit_FileInsteadOfLink(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	in := validInput()
	in.MusicLink = ""
	in.SongFile = "uploads/asake-lonely.mp3"

	sub, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "uploads/asake-lonely.mp3", sub.SongFile)
}

func TestSubmit_FillsBlankFieldsFromLookup(t *testing.T) {
	lookup := &stubLookup{details: &metadata.Details{ArtistName: "Wizkid, Tems", SongTitle: "Essence"}}
	svc, _ := newService(t, lookup, nil)

	in := validInput()
	in.ArtistName = ""
	sub, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Wizkid, Tems", sub.ArtistName)
	assert.Equal(t, "Lonely At The Top", sub.SongTitle)
	assert.Equal(t, 1, lookup.calls)

	_, err = svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.calls, "complete input needs no lookup")
}

func TestSubmit_Captcha(t *testing.T) {
	svc, _ := newService(t, nil, stubCaptcha{enabled: true, err: errors.New("hCaptcha validation failed")})
	_, err := svc.Submit(context.Background(), validInput())
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "captcha")

	svc, _ = newService(t, nil, stubCaptcha{enabled: false, err: errors.New("unused")})
	_, err = svc.Submit(context.Background(), validInput())
	assert.NoError(t, err)
}

func TestFormOptions(t *testing.T) {
	svc, db := newService(t, nil, stubCaptcha{enabled: true})
	testutil.TestPackage(t, db, "Premium", testutil.WithPrice(15000))
	testutil.TestPackage(t, db, "Basic", testutil.WithPrice(5000))
	testutil.TestPackage(t, db, "Retired", testutil.Inactive())

	opts, err := svc.FormOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Packages, 2)
	assert.Equal(t, "Basic", opts.Packages[0].Name)
	assert.Len(t, opts.Genres, 10)
	assert.Len(t, opts.LinkTypes, 2)
	assert.Equal(t, "site-key", opts.SiteKey)
}
