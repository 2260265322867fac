// Package moderation holds the staff actions on submissions. Approval and notes
// never touch payment state.
package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

// Notifier is told about every approve or reject action.
type Notifier interface {
	ModerationDecided(ctx context.Context, sub *models.SongSubmission, approved bool) error
}

type Service struct {
	submissions repository.SubmissionRepository
	notifier    Notifier
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{submissions: repos.Submission}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.SongSubmission, error) {
	return s.submissions.WithContext(ctx).List(filter)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.SongSubmission, error) {
	return s.submissions.WithContext(ctx).GetByID(id)
}

// Approve marks the submission approved and returns the staff notice.
func (s *Service) Approve(ctx context.Context, id uint) (string, error) {
	return s.setApproval(ctx, id, true)
}

// Reject clears the approval flag and returns the staff notice.
func (s *Service) Reject(ctx context.Context, id uint) (string, error) {
	return s.setApproval(ctx, id, false)
}

// UpdateNotes replaces the staff notes.
func (s *Service) UpdateNotes(ctx context.Context, id uint, notes string) (*models.SongSubmission, error) {
	repo := s.submissions.WithContext(ctx)
	if err := repo.UpdateFields(id, map[string]interface{}{"notes": notes}); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("submission_notes_updated", zap.Uint("submission_id", id))
	return repo.GetByID(id)
}

func (s *Service) setApproval(ctx context.Context, id uint, approved bool) (string, error) {
	repo := s.submissions.WithContext(ctx)
	sub, err := repo.GetByID(id)
	if err != nil {
		return "", err
	}
	if err := repo.UpdateFields(id, map[string]interface{}{"is_approved": approved}); err != nil {
		return "", err
	}

	verb := "rejected"
	if approved {
		verb = "approved"
	}
	log := logger.FromContext(ctx).With(zap.Uint("submission_id", id))
	log.Info("submission_moderated", zap.Bool("approved", approved))

	if s.notifier != nil {
		sub.IsApproved = approved
		if err := s.notifier.ModerationDecided(ctx, sub, approved); err != nil {
			log.Warn("moderation_notice_not_queued", zap.Error(err))
		}
	}
	return Notice(sub, verb), nil
}

// Notice renders the confirmation shown to staff after a moderation action.
func Notice(sub *models.SongSubmission, verb string) string {
	return fmt.Sprintf("Song \"%s\" by %s has been %s", sub.SongTitle, sub.ArtistName, verb)
}
