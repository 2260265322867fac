// Package jobqueue runs background jobs stored in Redis. Job ids move from the
// pending list to the processing list while a worker owns them. Failed jobs
// wait in a sorted set scored by their next attempt time.
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Redis key prefixes
	JobKeyPrefix     = "job:"
	JobQueueKey      = "job_queue"
	JobProcessingKey = "job_processing"
	JobRetryKey      = "job_retry"
	JobStatsKey      = "job_stats"

	// Job settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour
)

// Handler processes one job. A returned error schedules a retry.
type Handler func(ctx context.Context, job *Job) error

// Queue manages background jobs using Redis
type Queue struct {
	client     *redis.Client
	workers    int
	handlers   map[JobType]Handler
	retryDelay time.Duration
	pollWait   time.Duration
	log        *zap.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a new job queue on client
func NewQueue(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}

	return &Queue{
		client:     client,
		workers:    workers,
		handlers:   make(map[JobType]Handler),
		retryDelay: time.Minute,
		pollWait:   time.Second,
		log:        zap.L().With(zap.String("component", "jobqueue")),
		stopCh:     make(chan struct{}),
	}
}

// Register installs the handler for a job type. Call before Start.
func (q *Queue) Register(jobType JobType, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = h
}

// Start starts the job queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	q.log.Info("starting workers", zap.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.wg.Add(1)
	go q.stuckSweeper(10*time.Minute, time.Minute)
}

// Stop stops the workers and waits for in-flight jobs
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	close(q.stopCh)
	q.running = false
	q.mu.Unlock()

	q.wg.Wait()
	q.log.Info("all workers stopped")
}

// Enqueue adds a new job to the queue
func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, JobKeyPrefix+job.ID, jobData, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	q.log.Info("job_enqueued", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return job, nil
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()
	log := q.log.With(zap.Int("worker", id))

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		q.promoteDue(ctx, time.Now())

		job, err := q.dequeueJob(ctx)
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Error("dequeue failed", zap.Error(err))
				time.Sleep(q.pollWait)
			}
			continue
		}
		q.processJob(ctx, job)
	}
}

// dequeueJob moves the next job id to the processing list and loads the job
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	jobID, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, q.pollWait).Result()
	if err != nil {
		return nil, err
	}

	jobData, err := q.client.Get(ctx, JobKeyPrefix+jobID).Result()
	if err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("job data not found for ID %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}
	return &job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	log := q.log.With(zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	q.mu.Lock()
	handler, ok := q.handlers[job.Type]
	q.mu.Unlock()

	var err error
	if ok {
		err = handler(ctx, job)
	} else {
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	switch {
	case err == nil:
		job.MarkAsCompleted()
		q.updateJobStats(ctx, JobStatusCompleted, 1)
		q.client.Del(ctx, JobKeyPrefix+job.ID)
		log.Info("job_completed")
	case ok && job.RetryCount+1 < job.MaxRetries:
		job.MarkAsFailed(err.Error())
		job.MarkAsRetrying()
		q.updateJob(ctx, job)
		log.Warn("job_retrying", zap.Int("attempt", job.RetryCount), zap.Error(err))

		due := time.Now().Add(q.retryDelay * time.Duration(job.RetryCount))
		if err := q.client.ZAdd(ctx, JobRetryKey, redis.Z{Score: float64(due.UnixMilli()), Member: job.ID}).Err(); err != nil {
			log.Error("failed to schedule retry", zap.Error(err))
		}
	default:
		job.MarkAsFailed(err.Error())
		q.updateJob(ctx, job)
		q.updateJobStats(ctx, JobStatusFailed, 1)
		log.Error("job_failed", zap.Int("attempts", job.RetryCount), zap.Error(err))
	}

	q.client.LRem(ctx, JobProcessingKey, 1, job.ID)
}

// stuckSweeper requeues jobs left in the processing list by a crashed worker
func (q *Queue) stuckSweeper(maxAge, interval time.Duration) {
	defer q.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.requeueStuck(context.Background(), maxAge, time.Now())
		}
	}
}

func (q *Queue) requeueStuck(ctx context.Context, maxAge time.Duration, now time.Time) {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		q.log.Error("sweeper lrange failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if err != nil || job.Status != JobStatusProcessing {
			q.client.LRem(ctx, JobProcessingKey, 1, id)
			continue
		}

		started := job.UpdatedAt
		if job.ProcessedAt != nil {
			started = *job.ProcessedAt
		}
		if now.Sub(started) <= maxAge {
			continue
		}

		q.log.Warn("recovering stuck job", zap.String("job_id", id), zap.Duration("age", now.Sub(started)))
		job.Status = JobStatusPending
		job.ErrorMsg = "recovered by sweeper"
		job.UpdatedAt = now
		q.updateJob(ctx, job)
		q.client.LRem(ctx, JobProcessingKey, 1, id)
		q.client.RPush(ctx, JobQueueKey, id)
	}
}

// promoteDue moves retries whose due time has passed back to the pending list.
// ZRem decides which worker wins an id.
func (q *Queue) promoteDue(ctx context.Context, now time.Time) {
	ids, err := q.client.ZRangeByScore(ctx, JobRetryKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		q.log.Error("retry promotion failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, JobRetryKey, id).Result()
		if err != nil || removed == 0 {
			continue
		}
		q.client.LPush(ctx, JobQueueKey, id)
	}
}

func (q *Queue) updateJob(ctx context.Context, job *Job) {
	jobData, err := json.Marshal(job)
	if err != nil {
		q.log.Error("failed to marshal job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, jobData, JobTTL).Err(); err != nil {
		q.log.Error("failed to update job", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (q *Queue) updateJobStats(ctx context.Context, status JobStatus, delta int64) {
	if err := q.client.HIncrBy(ctx, JobStatsKey, string(status), delta).Err(); err != nil {
		q.log.Error("failed to update job stats", zap.Error(err))
	}
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	jobData, err := q.client.Get(ctx, JobKeyPrefix+jobID).Result()
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Stats is a snapshot of the queue for the staff dashboard.
type Stats struct {
	Pending    int64               `json:"pending"`
	Processing int64               `json:"processing"`
	Retrying   int64               `json:"retrying"`
	Totals     map[JobStatus]int64 `json:"totals"`
}

// GetStats returns list lengths and the running status counters
func (q *Queue) GetStats(ctx context.Context) (*Stats, error) {
	pending, err := q.client.LLen(ctx, JobQueueKey).Result()
	if err != nil {
		return nil, err
	}
	processing, err := q.client.LLen(ctx, JobProcessingKey).Result()
	if err != nil {
		return nil, err
	}
	retrying, err := q.client.ZCard(ctx, JobRetryKey).Result()
	if err != nil {
		return nil, err
	}
	raw, err := q.client.HGetAll(ctx, JobStatsKey).Result()
	if err != nil {
		return nil, err
	}

	totals := make(map[JobStatus]int64, len(raw))
	for status, count := range raw {
		if n, err := json.Number(count).Int64(); err == nil {
			totals[JobStatus(status)] = n
		}
	}
	return &Stats{Pending: pending, Processing: processing, Retrying: retrying, Totals: totals}, nil
}
