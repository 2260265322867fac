package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) WithContext(ctx context.Context) SubmissionRepository {
	return &submissionRepository{db: r.db.WithContext(ctx)}
}

func (r *submissionRepository) Transaction(fn func(repo SubmissionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&submissionRepository{db: tx})
	})
}

// Create creates a new submission in the database
func (r *submissionRepository) Create(submission *models.SongSubmission) error {
	return r.db.Create(submission).Error
}

// GetByID retrieves a submission with its package
func (r *submissionRepository) GetByID(id uint) (*models.SongSubmission, error) {
	var s models.SongSubmission
	if err := r.db.Preload("Package").First(&s, id).Error; err != nil {
		return nil, r.notFound(err, id)
	}
	return &s, nil
}

func (r *submissionRepository) GetByIDForUpdate(id uint) (*models.SongSubmission, error) {
	var s models.SongSubmission
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	if err != nil {
		return nil, r.notFound(err, id)
	}
	return &s, nil
}

// UpdateFields writes the given columns in a single UPDATE statement
func (r *submissionRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.SongSubmission{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("submission", id)
	}
	return nil
}

// List returns submissions newest first, narrowed by filter
func (r *submissionRepository) List(filter SubmissionFilter) ([]models.SongSubmission, error) {
	q := r.db.Model(&models.SongSubmission{}).Preload("Package")
	switch filter.Status {
	case FilterApproved:
		q = q.Where("is_approved = ?", true)
	case FilterPending:
		q = q.Where("is_approved = ?", false)
	case FilterPaid:
		q = q.Where("payment_status = ?", models.PaymentStatusCompleted)
	case FilterUnpaid:
		q = q.Where("payment_status = ?", models.PaymentStatusPending)
	}
	if filter.Genre != "" {
		q = q.Where("genre = ?", filter.Genre)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("artist_name LIKE ? OR song_title LIKE ? OR email LIKE ?", like, like, like)
	}

	var out []models.SongSubmission
	err := q.Order("submission_date DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// ListPayments returns submissions ordered by payment date, most recent first
func (r *submissionRepository) ListPayments(filter PaymentFilter) ([]models.SongSubmission, error) {
	q := r.db.Model(&models.SongSubmission{}).Preload("Package")
	if filter.Status != "" {
		q = q.Where("payment_status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("artist_name LIKE ? OR song_title LIKE ? OR email LIKE ? OR transaction_reference LIKE ?", like, like, like, like)
	}

	var out []models.SongSubmission
	err := q.Order("payment_date IS NULL").
		Order("payment_date DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// Recent returns the newest submissions
func (r *submissionRepository) Recent(limit int) ([]models.SongSubmission, error) {
	var out []models.SongSubmission
	err := r.db.Preload("Package").Order("submission_date DESC").Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *submissionRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.SongSubmission{}).Count(&n).Error
	return n, err
}

func (r *submissionRepository) CountByApproval(approved bool) (int64, error) {
	var n int64
	err := r.db.Model(&models.SongSubmission{}).Where("is_approved = ?", approved).Count(&n).Error
	return n, err
}

// TotalRevenue sums the package price over all completed submissions
func (r *submissionRepository) TotalRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&models.SongSubmission{}).
		Select("COALESCE(SUM(packages.price), 0)").
		Joins("JOIN packages ON packages.id = song_submissions.package_id").
		Where("song_submissions.payment_status = ?", models.PaymentStatusCompleted).
		Row().Scan(&total)
	return total, err
}

// PaidSince lists completed payments made at or after since
func (r *submissionRepository) PaidSince(since time.Time) ([]PaidSubmission, error) {
	var rows []PaidSubmission
	err := r.db.Model(&models.SongSubmission{}).
		Select("song_submissions.payment_date AS payment_date, packages.price AS price").
		Joins("JOIN packages ON packages.id = song_submissions.package_id").
		Where("song_submissions.payment_status = ? AND song_submissions.payment_date >= ?", models.PaymentStatusCompleted, since).
		Order("song_submissions.payment_date ASC").
		Scan(&rows).Error
	return rows, err
}

// SubmittedSince lists submission dates at or after since
func (r *submissionRepository) SubmittedSince(since time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&models.SongSubmission{}).
		Where("submission_date >= ?", since).
		Order("submission_date ASC").
		Pluck("submission_date", &dates).Error
	return dates, err
}

func (r *submissionRepository) CountByGenre() ([]GroupCount, error) {
	return r.groupCount("genre")
}

func (r *submissionRepository) CountByPaymentStatus() ([]GroupCount, error) {
	return r.groupCount("payment_status")
}

func (r *submissionRepository) groupCount(column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.Model(&models.SongSubmission{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Order(column + " ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *submissionRepository) notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("submission", id)
	}
	return err
}
