package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/SongPitch/app/models"
)

// PackageRepository defines the interface for package catalog operations
type PackageRepository interface {
	WithContext(ctx context.Context) PackageRepository
	Create(pkg *models.Package) error
	GetByID(id uint) (*models.Package, error)
	GetAll() ([]models.Package, error)
	GetActive() ([]models.Package, error)
	GetCheapestActive() (*models.Package, error)
	Update(pkg *models.Package) error
	Delete(id uint) error
}

// SubmissionRepository defines the interface for song submission operations
type SubmissionRepository interface {
	WithContext(ctx context.Context) SubmissionRepository
	// Transaction runs fn against a repository bound to a single database transaction.
	Transaction(fn func(repo SubmissionRepository) error) error
	Create(submission *models.SongSubmission) error
	GetByID(id uint) (*models.SongSubmission, error)
	// GetByIDForUpdate loads a submission and holds a row lock until the surrounding
	// transaction ends. Only meaningful inside Transaction.
	GetByIDForUpdate(id uint) (*models.SongSubmission, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	List(filter SubmissionFilter) ([]models.SongSubmission, error)
	ListPayments(filter PaymentFilter) ([]models.SongSubmission, error)
	Recent(limit int) ([]models.SongSubmission, error)
	Count() (int64, error)
	CountByApproval(approved bool) (int64, error)
	TotalRevenue() (float64, error)
	PaidSince(since time.Time) ([]PaidSubmission, error)
	SubmittedSince(since time.Time) ([]time.Time, error)
	CountByGenre() ([]GroupCount, error)
	CountByPaymentStatus() ([]GroupCount, error)
}

// Submission list status filters offered on the staff dashboard
const (
	FilterApproved = "approved"
	FilterPending  = "pending"
	FilterPaid     = "paid"
	FilterUnpaid   = "unpaid"
)

// SubmissionFilter narrows the staff song list. Empty fields are ignored.
type SubmissionFilter struct {
	Status string
	Genre  string
	Search string
}

// PaymentFilter narrows the staff payment list. Empty fields are ignored.
type PaymentFilter struct {
	Status string
	Search string
}

// PaidSubmission is a completed payment with the price of its package.
type PaidSubmission struct {
	PaymentDate time.Time
	Price       float64
}

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Value string
	Count int64
}
