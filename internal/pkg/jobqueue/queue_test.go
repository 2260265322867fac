package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 3},
		{"Negative workers", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueue(nil, tt.workers)

			assert.NotNil(t, queue)
			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.NotNil(t, queue.handlers)
			assert.NotNil(t, queue.stopCh)
			assert.False(t, queue.running)
		})
	}
}

func TestEnqueueStoresJob(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()

	job, err := q.Enqueue(ctx, JobTypePaymentReceipt, NotificationPayload{SubmissionID: 4, Email: "a@b.c"}.ToMap())
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobTypePaymentReceipt, stored.Type)

	payload, err := NotificationPayloadFromMap(stored.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint(4), payload.SubmissionID)
	assert.Equal(t, "a@b.c", payload.Email)

	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(0), stats.Processing)
	assert.Equal(t, int64(1), stats.Totals[JobStatusPending])
}

func TestWorkerRunsHandler(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 2)
	ctx := context.Background()

	var handled atomic.Int32
	q.Register(JobTypeModerationDecision, func(_ context.Context, job *Job) error {
		handled.Add(1)
		return nil
	})

	job, err := q.Enqueue(ctx, JobTypeModerationDecision, NotificationPayload{SubmissionID: 1}.ToMap())
	require.NoError(t, err)

	q.Start()
	t.Cleanup(q.Stop)

	assert.Eventually(t, func() bool { return handled.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		stats, err := q.GetStats(ctx)
		return err == nil && stats.Totals[JobStatusCompleted] == 1 && stats.Processing == 0
	}, 5*time.Second, 20*time.Millisecond)

	_, err = q.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestWorkerRetriesThenFails(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	q.retryDelay = 10 * time.Millisecond
	q.pollWait = 50 * time.Millisecond
	ctx := context.Background()

	var attempts atomic.Int32
	q.Register(JobTypePaymentReceipt, func(context.Context, *Job) error {
		attempts.Add(1)
		return errors.New("smtp down")
	})

	job, err := q.Enqueue(ctx, JobTypePaymentReceipt, NotificationPayload{SubmissionID: 1}.ToMap())
	require.NoError(t, err)

	q.Start()
	t.Cleanup(q.Stop)

	assert.Eventually(t, func() bool {
		stored, err := q.GetJob(ctx, job.ID)
		return err == nil && stored.Status == JobStatusFailed && stored.RetryCount == DefaultMaxRetries
	}, 10*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(DefaultMaxRetries), attempts.Load())

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "smtp down", stored.ErrorMsg)
}

func TestUnknownJobTypeFailsWithoutRetry(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()

	job, err := q.Enqueue(ctx, JobType("unknown"), nil)
	require.NoError(t, err)

	q.Start()
	t.Cleanup(q.Stop)

	assert.Eventually(t, func() bool {
		stored, err := q.GetJob(ctx, job.ID)
		return err == nil && stored.Status == JobStatusFailed
	}, 5*time.Second, 20*time.Millisecond)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Contains(t, stored.ErrorMsg, "unknown job type")
}

func TestRequeueStuckJobs(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()
	now := time.Now()

	stale := now.Add(-time.Hour)
	fresh := now.Add(-time.Minute)
	for id, started := range map[string]time.Time{"stale": stale, "fresh": fresh} {
		started := started
		job := Job{ID: id, Type: JobTypePaymentReceipt, Status: JobStatusProcessing, ProcessedAt: &started, UpdatedAt: started}
		data, err := json.Marshal(job)
		require.NoError(t, err)
		require.NoError(t, client.Set(ctx, JobKeyPrefix+id, data, JobTTL).Err())
		require.NoError(t, client.LPush(ctx, JobProcessingKey, id).Err())
	}
	require.NoError(t, client.LPush(ctx, JobProcessingKey, "orphan").Err())

	q.requeueStuck(ctx, 10*time.Minute, now)

	processing, err := client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, processing)

	pending, err := client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, pending)

	recovered, err := q.GetJob(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, recovered.Status)
	assert.Equal(t, "recovered by sweeper", recovered.ErrorMsg)
}

func TestRetryScheduledInRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()

	q.Register(JobTypePaymentReceipt, func(context.Context, *Job) error {
		return errors.New("smtp down")
	})
	job, err := q.Enqueue(ctx, JobTypePaymentReceipt, NotificationPayload{SubmissionID: 1}.ToMap())
	require.NoError(t, err)

	dequeued, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, dequeued)

	// the retry outlives the worker that scheduled it
	retrying, err := client.ZRange(ctx, JobRetryKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, retrying)

	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(0), stats.Processing)
	assert.Equal(t, int64(1), stats.Retrying)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
}

func TestPromoteDueRetries(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewQueue(client, 1)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, client.ZAdd(ctx, JobRetryKey,
		redis.Z{Score: float64(now.Add(-time.Second).UnixMilli()), Member: "due"},
		redis.Z{Score: float64(now.Add(time.Minute).UnixMilli()), Member: "later"},
	).Err())

	q.promoteDue(ctx, now)

	pending, err := client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, pending)

	retrying, err := client.ZRange(ctx, JobRetryKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"later"}, retrying)

	q.promoteDue(ctx, now.Add(2*time.Minute))
	pending, err = client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"later", "due"}, pending)
}

func TestJobStateTransitions(t *testing.T) {
	job := &Job{MaxRetries: 2}
	assert.True(t, job.IsRetryable())

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, "boom", job.ErrorMsg)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsFailed("boom")
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}
