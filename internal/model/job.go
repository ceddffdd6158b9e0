package model

import "time"

// JobStatus represents the lifecycle state of a research job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is absorbing. A job never leaves a
// terminal state; resubmission creates a new job id.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is the per-job mutable record held by the job store. The pipeline is
// the only writer; status/report endpoints read snapshots.
type Job struct {
	ID             string               `json:"job_id"`
	Company        string               `json:"company"`
	Status         JobStatus            `json:"status"`
	CurrentStep    string               `json:"current_step"`
	Progress       int                  `json:"progress_percentage"`
	StepsCompleted []string             `json:"steps_completed"`
	TotalSteps     int                  `json:"total_steps"`
	Error          string               `json:"error,omitempty"`
	Report         string               `json:"report,omitempty"`
	References     []string             `json:"references,omitempty"`
	ReferenceInfo  map[string]Reference `json:"reference_info,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	LastUpdate     time.Time            `json:"last_update"`
}

// Clone returns a deep copy so readers never observe a record mid-mutation.
func (j *Job) Clone() *Job {
	out := *j
	out.StepsCompleted = append([]string(nil), j.StepsCompleted...)
	out.References = append([]string(nil), j.References...)
	if j.ReferenceInfo != nil {
		out.ReferenceInfo = make(map[string]Reference, len(j.ReferenceInfo))
		for k, v := range j.ReferenceInfo {
			out.ReferenceInfo[k] = v
		}
	}
	return &out
}
