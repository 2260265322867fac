// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/SongPitch/app/models"
)

// SetupTestDB opens a private SQLite in-memory database with the schema migrated.
// The pool is pinned to one connection so every query sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Package{}, &models.SongSubmission{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
	})

	return db
}

// PackageOption customises a package fixture
type PackageOption func(*models.Package)

func WithPrice(price float64) PackageOption {
	return func(p *models.Package) { p.Price = price }
}

func WithPackageID(id uint) PackageOption {
	return func(p *models.Package) { p.ID = id }
}

func Inactive() PackageOption {
	return func(p *models.Package) { p.IsActive = false }
}

// TestPackage inserts an active package.
func TestPackage(t *testing.T, db *gorm.DB, name string, opts ...PackageOption) *models.Package {
	t.Helper()

	pkg := &models.Package{
		Name:        name,
		Description: name + " review",
		Price:       5000,
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(pkg)
	}
	if err := db.Create(pkg).Error; err != nil {
		t.Fatalf("Failed to create package: %v", err)
	}
	// is_active has a database default, so a false value has to be written explicitly.
	if !pkg.IsActive {
		if err := db.Model(pkg).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate package: %v", err)
		}
	}
	return pkg
}

// SubmissionOption customises a submission fixture
type SubmissionOption func(*models.SongSubmission)

func WithPackage(pkg *models.Package) SubmissionOption {
	return func(s *models.SongSubmission) {
		id := pkg.ID
		s.PackageID = &id
	}
}

func WithArtist(artist, title string) SubmissionOption {
	return func(s *models.SongSubmission) {
		s.ArtistName = artist
		s.SongTitle = title
	}
}

func WithGenre(genre string) SubmissionOption {
	return func(s *models.SongSubmission) { s.Genre = genre }
}

func WithEmail(email string) SubmissionOption {
	return func(s *models.SongSubmission) { s.Email = email }
}

func Approved() SubmissionOption {
	return func(s *models.SongSubmission) { s.IsApproved = true }
}

func WithSubmittedAt(at time.Time) SubmissionOption {
	return func(s *models.SongSubmission) { s.SubmissionDate = at }
}

// Paid marks the fixture as completed with the given gateway id and date.
func Paid(reference string, at time.Time) SubmissionOption {
	return func(s *models.SongSubmission) {
		s.PaymentStatus = models.PaymentStatusCompleted
		s.TransactionReference = reference
		paidAt := at
		s.PaymentDate = &paidAt
	}
}

func WithPaymentStatus(status string) SubmissionOption {
	return func(s *models.SongSubmission) { s.PaymentStatus = status }
}

// TestSubmission inserts a pending submission.
func TestSubmission(t *testing.T, db *gorm.DB, opts ...SubmissionOption) *models.SongSubmission {
	t.Helper()

	s := &models.SongSubmission{
		ArtistName:    "Burna Boy",
		SongTitle:     "Last Last",
		Genre:         models.GenreHipHop,
		LinkType:      models.LinkTypeSpotify,
		MusicLink:     "https://open.spotify.com/track/5YJbexample",
		Email:         "artist@example.com",
		PaymentStatus: models.PaymentStatusPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}
	return s
}
