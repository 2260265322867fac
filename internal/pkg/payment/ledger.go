package payment

import (
	"context"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
)

// ListPayments returns submissions for the staff payment ledger, newest payment first.
func (s *Service) ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]models.SongSubmission, error) {
	return s.submissions.WithContext(ctx).ListPayments(filter)
}

func (s *Service) GetPayment(ctx context.Context, submissionID uint) (*models.SongSubmission, error) {
	return s.submissions.WithContext(ctx).GetByID(submissionID)
}
