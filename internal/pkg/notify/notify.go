// Package notify emails submitters about their payment and the moderation
// decision. Emails are queued and sent by jobqueue workers.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
	"github.com/ManuelReschke/SongPitch/internal/pkg/mail"
)

// Enqueuer stores a job for later processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Notifier struct {
	queue    Enqueuer
	sender   Sender
	currency string
}

func NewNotifier(queue Enqueuer, sender Sender, currency string) *Notifier {
	return &Notifier{queue: queue, sender: sender, currency: currency}
}

// Register installs the job handlers that send the emails.
func (n *Notifier) Register(q *jobqueue.Queue) {
	q.Register(jobqueue.JobTypePaymentReceipt, n.handle(receiptMessage))
	q.Register(jobqueue.JobTypeModerationDecision, n.handle(decisionMessage))
}

// PaymentCompleted queues the receipt for a freshly paid submission.
func (n *Notifier) PaymentCompleted(ctx context.Context, sub *models.SongSubmission) error {
	if n == nil {
		return nil
	}
	payload := jobqueue.NotificationPayload{
		SubmissionID:         sub.ID,
		Email:                sub.Email,
		ArtistName:           sub.ArtistName,
		SongTitle:            sub.SongTitle,
		Currency:             n.currency,
		TransactionReference: sub.TransactionReference,
	}
	if sub.Package != nil {
		payload.PackageName = sub.Package.Name
		payload.Amount = sub.Package.Price
	}
	return n.enqueue(ctx, jobqueue.JobTypePaymentReceipt, payload)
}

// ModerationDecided queues the approve or reject email.
func (n *Notifier) ModerationDecided(ctx context.Context, sub *models.SongSubmission, approved bool) error {
	return n.enqueue(ctx, jobqueue.JobTypeModerationDecision, jobqueue.NotificationPayload{
		SubmissionID: sub.ID,
		Email:        sub.Email,
		ArtistName:   sub.ArtistName,
		SongTitle:    sub.SongTitle,
		Approved:     approved,
	})
}

func (n *Notifier) enqueue(ctx context.Context, jobType jobqueue.JobType, payload jobqueue.NotificationPayload) error {
	if n == nil || n.queue == nil {
		return nil
	}
	if strings.TrimSpace(payload.Email) == "" {
		return nil
	}
	if _, err := n.queue.Enqueue(ctx, jobType, payload.ToMap()); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	logger.FromContext(ctx).Info("notification_queued",
		zap.String("type", string(jobType)),
		zap.Uint("submission_id", payload.SubmissionID),
	)
	return nil
}

func (n *Notifier) handle(render func(*jobqueue.NotificationPayload) mail.Message) jobqueue.Handler {
	return func(ctx context.Context, job *jobqueue.Job) error {
		payload, err := jobqueue.NotificationPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return n.sender.Send(ctx, render(payload))
	}
}

func receiptMessage(p *jobqueue.NotificationPayload) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", p.ArtistName)
	fmt.Fprintf(&b, "we received your payment for \"%s\".\n\n", p.SongTitle)
	if p.PackageName != "" {
		fmt.Fprintf(&b, "Package: %s\n", p.PackageName)
		fmt.Fprintf(&b, "Amount: %.2f %s\n", p.Amount, p.Currency)
	}
	fmt.Fprintf(&b, "Transaction: %s\n\n", p.TransactionReference)
	b.WriteString("Our team will review your song shortly.\n")

	return mail.Message{
		To:      p.Email,
		Subject: fmt.Sprintf("Payment received for \"%s\"", p.SongTitle),
		Body:    b.String(),
	}
}

func decisionMessage(p *jobqueue.NotificationPayload) mail.Message {
	verb := "rejected"
	closing := "Thank you for your submission. You are welcome to pitch another song."
	if p.Approved {
		verb = "approved"
		closing = "Congratulations! We will be in touch about the next steps."
	}

	return mail.Message{
		To:      p.Email,
		Subject: fmt.Sprintf("Your song \"%s\" has been %s", p.SongTitle, verb),
		Body: fmt.Sprintf("Hi %s,\n\nyour song \"%s\" has been %s.\n\n%s\n",
			p.ArtistName, p.SongTitle, verb, closing),
	}
}
