package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/testutil"
)

func TestCreateListUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))
	ctx := context.Background()

	premium, err := svc.Create(ctx, Input{Name: "Premium", Price: 15000, IsActive: true})
	require.NoError(t, err)
	basic, err := svc.Create(ctx, Input{Name: " Basic ", Description: "One curator", Price: 5000, IsActive: true})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, Input{Name: "Hidden", Price: 100, IsActive: false})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	pkgs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 3)
	assert.Equal(t, []string{"Hidden", "Basic", "Premium"}, []string{pkgs[0].Name, pkgs[1].Name, pkgs[2].Name})
	assert.False(t, pkgs[0].IsActive)

	updated, err := svc.Update(ctx, basic.ID, Input{Name: "Basic", Price: 6000, IsActive: false})
	require.NoError(t, err)
	assert.Equal(t, 6000.0, updated.Price)
	assert.False(t, updated.IsActive)

	sub := testutil.TestSubmission(t, db, testutil.WithPackage(premium))
	_, err = svc.Delete(ctx, premium.ID)
	require.NoError(t, err)

	var stored models.SongSubmission
	require.NoError(t, db.First(&stored, sub.ID).Error)
	assert.Nil(t, stored.PackageID)

	_, err = svc.Get(ctx, premium.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))

	_, err := svc.Create(context.Background(), Input{Name: "", Price: -1})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(repository.NewRepositories(db))

	_, err := svc.Update(context.Background(), 77, Input{Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.Delete(context.Background(), 77)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
