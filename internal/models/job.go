package models

import "time"

// JobStatus represents the processing state of an extraction job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ExtractionJob tracks an asynchronous PDF extraction. The PDF itself is
// never stored; only the outcome is.
type ExtractionJob struct {
	ID            string       `json:"id" db:"id" bson:"_id"`
	OwnerUID      string       `json:"ownerUid" db:"owner_uid" bson:"ownerUid"`
	Filename      string       `json:"filename" db:"filename" bson:"filename"`
	Status        JobStatus    `json:"status" db:"status" bson:"status"`
	PageCount     int          `json:"pageCount" db:"page_count" bson:"pageCount"`
	Result        *ParsedPaper `json:"result,omitempty" db:"result" bson:"result,omitempty"`
	FailureReason string       `json:"failureReason,omitempty" db:"failure_reason" bson:"failureReason"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Done reports whether the job reached a terminal state.
func (j *ExtractionJob) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
