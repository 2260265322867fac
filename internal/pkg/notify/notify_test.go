package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SongPitch/internal/pkg/mail"
)

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) Messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.sent...)
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, jobqueue.JobType, map[string]interface{}) (*jobqueue.Job, error) {
	return nil, errors.New("redis down")
}

func paidSubmission() *models.SongSubmission {
	return &models.SongSubmission{
		ID:                   12,
		ArtistName:           "Asake",
		SongTitle:            "Lonely At The Top",
		Email:                "asake@example.com",
		TransactionReference: "4432109",
		PaymentStatus:        models.PaymentStatusCompleted,
		Package:              &models.Package{ID: 2, Name: "Premium", Price: 15000},
	}
}

func TestNotificationsAreDeliveredByWorkers(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	box := &outbox{}
	q := jobqueue.NewQueue(client, 1)
	n := NewNotifier(q, box, "NGN")
	n.Register(q)
	q.Start()
	t.Cleanup(q.Stop)

	ctx := context.Background()
	require.NoError(t, n.PaymentCompleted(ctx, paidSubmission()))
	require.NoError(t, n.ModerationDecided(ctx, paidSubmission(), true))

	assert.Eventually(t, func() bool { return len(box.Messages()) == 2 }, 5*time.Second, 20*time.Millisecond)

	bySubject := map[string]mail.Message{}
	for _, m := range box.Messages() {
		bySubject[m.Subject] = m
	}

	receipt, ok := bySubject[`Payment received for "Lonely At The Top"`]
	require.True(t, ok)
	assert.Equal(t, "asake@example.com", receipt.To)
	assert.Contains(t, receipt.Body, "Package: Premium")
	assert.Contains(t, receipt.Body, "Amount: 15000.00 NGN")
	assert.Contains(t, receipt.Body, "Transaction: 4432109")

	decision, ok := bySubject[`Your song "Lonely At The Top" has been approved`]
	require.True(t, ok)
	assert.Contains(t, decision.Body, "Congratulations!")
}

func TestDecisionMessageRejected(t *testing.T) {
	msg := decisionMessage(&jobqueue.NotificationPayload{Email: "a@b.c", ArtistName: "Rema", SongTitle: "Calm Down"})

	assert.Equal(t, "a@b.c", msg.To)
	assert.Equal(t, `Your song "Calm Down" has been rejected`, msg.Subject)
	assert.Contains(t, msg.Body, "Hi Rema,")
}

func TestReceiptWithoutPackage(t *testing.T) {
	msg := receiptMessage(&jobqueue.NotificationPayload{Email: "a@b.c", ArtistName: "Rema", SongTitle: "Calm Down", TransactionReference: "77"})

	assert.NotContains(t, msg.Body, "Package:")
	assert.Contains(t, msg.Body, "Transaction: 77")
}

func TestEnqueueSkipsAndErrors(t *testing.T) {
	ctx := context.Background()

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PaymentCompleted(ctx, paidSubmission()))

	noEmail := paidSubmission()
	noEmail.Email = " "
	assert.NoError(t, NewNotifier(failingQueue{}, &outbox{}, "NGN").PaymentCompleted(ctx, noEmail))

	err := NewNotifier(failingQueue{}, &outbox{}, "NGN").ModerationDecided(ctx, paidSubmission(), false)
	assert.ErrorContains(t, err, "redis down")
}
