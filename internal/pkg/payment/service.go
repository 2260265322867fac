// Package payment moves a song submission from pending to paid: it resolves the
// package, mints the transaction reference and verifies the gateway callback.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/flutterwave"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

// Gateway verifies a transaction against the payment provider.
type Gateway interface {
	VerifyTransaction(ctx context.Context, transactionID string) (*flutterwave.VerifyResponse, error)
}

// Notifier is told about a submission's first completed payment.
type Notifier interface {
	PaymentCompleted(ctx context.Context, sub *models.SongSubmission) error
}

type Service struct {
	packages    repository.PackageRepository
	submissions repository.SubmissionRepository
	gateway     Gateway
	notifier    Notifier
	cfg         Config
	now         func() time.Time
}

func NewService(repos *repository.Repositories, gateway Gateway, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &Service{
		packages:    repos.Package,
		submissions: repos.Submission,
		gateway:     gateway,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetNotifier installs the receipt notifier. Without one no receipt is sent.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Initiate resolves the package for a submission and builds the checkout payload.
// No call to the gateway is made.
func (s *Service) Initiate(ctx context.Context, submissionID uint) (*Checkout, error) {
	log := logger.FromContext(ctx).With(zap.Uint("submission_id", submissionID))
	submissions := s.submissions.WithContext(ctx)

	sub, err := submissions.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInitiationFailed, err)
	}

	pkg := sub.Package
	if pkg == nil {
		pkg, err = s.packages.WithContext(ctx).GetCheapestActive()
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Warn("payment_no_active_package")
				return nil, ErrNoActivePackage
			}
			return nil, fmt.Errorf("%w: %w", ErrInitiationFailed, err)
		}
		if err := submissions.UpdateFields(sub.ID, map[string]interface{}{"package_id": pkg.ID}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitiationFailed, err)
		}
		pkgID := pkg.ID
		sub.PackageID = &pkgID
		sub.Package = pkg
	}

	ref := FormatReference(sub.ID, pkg.ID, s.now())
	log.Info("payment_initiated",
		zap.Uint("package_id", pkg.ID),
		zap.String("tx_ref", ref),
		zap.Float64("amount", pkg.Price),
	)

	return &Checkout{
		Submission:  sub,
		Package:     pkg,
		TxRef:       ref,
		PublicKey:   s.cfg.PublicKey,
		CallbackURL: s.cfg.CallbackURL,
		Amount:      pkg.Price,
		Currency:    s.cfg.Currency,
		Customer: Customer{
			Email: sub.Email,
			Name:  sub.ArtistName,
		},
		Title:       "Song Submission Payment",
		Description: fmt.Sprintf("Payment for %s package", pkg.Name),
	}, nil
}

// Verify handles the gateway callback. A successful callback is confirmed with the
// gateway before the submission is marked completed; any other status is trusted
// and marks the submission failed without a remote call.
func (s *Service) Verify(ctx context.Context, cb Callback) (*Outcome, error) {
	log := logger.FromContext(ctx).With(zap.String("tx_ref", cb.TxRef))

	transactionID := strings.TrimSpace(cb.TransactionID)
	if transactionID == "" || strings.TrimSpace(cb.TxRef) == "" {
		log.Warn("payment_verify_missing_params")
		return nil, ErrMissingVerificationParams
	}

	submissionID, packageID, err := ParseReference(cb.TxRef)
	if err != nil {
		log.Warn("payment_verify_malformed_reference", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.Uint("submission_id", submissionID), zap.String("transaction_id", transactionID))

	submissions := s.submissions.WithContext(ctx)
	sub, err := submissions.GetByID(submissionID)
	if err != nil {
		return nil, err
	}

	if cb.Status != CallbackStatusSuccessful {
		if err := s.markFailed(submissions, submissionID); err != nil {
			return nil, err
		}
		log.Info("payment_rejected", zap.String("callback_status", cb.Status))
		return nil, ErrVerificationRejected
	}

	resp, err := s.gateway.VerifyTransaction(ctx, transactionID)
	if err != nil {
		log.Warn("payment_verify_network_error", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrVerificationNetwork, err)
	}
	if resp == nil {
		log.Warn("payment_verify_network_error", zap.String("reason", "empty gateway response"))
		return nil, fmt.Errorf("%w: empty gateway response", ErrVerificationNetwork)
	}
	if !resp.Successful() {
		if err := s.markFailed(submissions, submissionID); err != nil {
			return nil, err
		}
		log.Info("payment_rejected",
			zap.String("gateway_status", resp.Status),
			zap.String("transaction_status", resp.Data.Status),
		)
		return nil, ErrVerificationRejected
	}
	if reason := s.mismatch(ctx, cb.TxRef, sub, packageID, &resp.Data); reason != "" {
		log.Warn("payment_mismatch",
			zap.String("reason", reason),
			zap.String("gateway_tx_ref", resp.Data.TxRef),
			zap.Float64("amount", resp.Data.Amount),
			zap.String("currency", resp.Data.Currency),
		)
		return nil, ErrVerificationRejected
	}

	firstCompletion := false
	err = submissions.Transaction(func(tx repository.SubmissionRepository) error {
		current, err := tx.GetByIDForUpdate(submissionID)
		if err != nil {
			return err
		}
		firstCompletion = !current.IsPaid()
		fields := map[string]interface{}{
			"payment_status":        models.PaymentStatusCompleted,
			"transaction_reference": transactionID,
		}
		if !current.IsPaid() || current.PaymentDate == nil {
			fields["payment_date"] = s.now()
		}
		return tx.UpdateFields(submissionID, fields)
	})
	if err != nil {
		return nil, fmt.Errorf("complete payment: %w", err)
	}

	sub, err = submissions.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	log.Info("payment_completed",
		zap.Float64("amount", resp.Data.Amount),
		zap.String("currency", resp.Data.Currency),
		zap.Bool("replay", !firstCompletion),
	)
	if firstCompletion && s.notifier != nil {
		if err := s.notifier.PaymentCompleted(ctx, sub); err != nil {
			log.Warn("payment_receipt_not_queued", zap.Error(err))
		}
	}
	return &Outcome{Submission: sub, Package: sub.Package}, nil
}

// mismatch checks that the confirmed transaction was made for this reference,
// in the configured currency, for at least the package price. It returns the
// reason for a mismatch, or "" when the transaction belongs to the submission.
func (s *Service) mismatch(ctx context.Context, txRef string, sub *models.SongSubmission, packageID uint, tx *flutterwave.Transaction) string {
	if tx.TxRef != txRef {
		return "tx_ref"
	}
	if !strings.EqualFold(tx.Currency, s.cfg.Currency) {
		return "currency"
	}

	pkg := sub.Package
	if pkg == nil {
		found, err := s.packages.WithContext(ctx).GetByID(packageID)
		if errors.Is(err, apperrors.ErrNotFound) {
			// deleted since checkout
			return ""
		}
		if err != nil {
			return "package_lookup"
		}
		pkg = found
	}
	if tx.Amount < pkg.Price {
		return "amount"
	}
	return ""
}

// markFailed records a declined payment. A completed payment is never downgraded.
func (s *Service) markFailed(submissions repository.SubmissionRepository, submissionID uint) error {
	err := submissions.Transaction(func(tx repository.SubmissionRepository) error {
		current, err := tx.GetByIDForUpdate(submissionID)
		if err != nil {
			return err
		}
		if current.IsPaid() {
			return nil
		}
		return tx.UpdateFields(submissionID, map[string]interface{}{
			"payment_status": models.PaymentStatusFailed,
		})
	})
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}
