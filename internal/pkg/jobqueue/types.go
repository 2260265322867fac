package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePaymentReceipt     JobType = "payment_receipt"
	JobTypeModerationDecision JobType = "moderation_decision"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotificationPayload is the payload of both notification job types.
type NotificationPayload struct {
	SubmissionID         uint    `json:"submission_id"`
	Email                string  `json:"email"`
	ArtistName           string  `json:"artist_name"`
	SongTitle            string  `json:"song_title"`
	PackageName          string  `json:"package_name,omitempty"`
	Amount               float64 `json:"amount,omitempty"`
	Currency             string  `json:"currency,omitempty"`
	TransactionReference string  `json:"transaction_reference,omitempty"`
	Approved             bool    `json:"approved,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p NotificationPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"submission_id":         p.SubmissionID,
		"email":                 p.Email,
		"artist_name":           p.ArtistName,
		"song_title":            p.SongTitle,
		"package_name":          p.PackageName,
		"amount":                p.Amount,
		"currency":              p.Currency,
		"transaction_reference": p.TransactionReference,
		"approved":              p.Approved,
	}
}

// NotificationPayloadFromMap creates a payload from a map
func NotificationPayloadFromMap(data map[string]interface{}) (*NotificationPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload NotificationPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable reports whether the job has retries left
func (j *Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
