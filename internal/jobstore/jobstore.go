// Package jobstore holds the per-job mutable records behind a single lock.
// The pipeline goroutine is the only writer for a given job; the HTTP façade
// reads concurrently. Readers always get a deep copy taken under the lock,
// so a record can never be observed mid-update.
package jobstore

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/model"
)

// Store is a bounded, mutex-guarded map of job records. Entries are
// constructed eagerly at Create; there is no on-read default entry.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	maxJobs int
}

// New creates a Store retaining at most maxJobs records. A non-positive
// limit disables eviction.
func New(maxJobs int) *Store {
	return &Store{
		jobs:    make(map[string]*model.Job),
		maxJobs: maxJobs,
	}
}

// Create registers a new pending job. When the store is at capacity the
// oldest terminal job is evicted first; live jobs are never evicted.
func (s *Store) Create(jobID, company string, totalSteps int) *model.Job {
	now := time.Now()
	job := &model.Job{
		ID:             jobID,
		Company:        company,
		Status:         model.JobStatusPending,
		StepsCompleted: []string{},
		TotalSteps:     totalSteps,
		CreatedAt:      now,
		LastUpdate:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxJobs > 0 && len(s.jobs) >= s.maxJobs {
		s.evictOldestTerminalLocked()
	}
	s.jobs[jobID] = job
	return job.Clone()
}

func (s *Store) evictOldestTerminalLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, j := range s.jobs {
		if !j.Status.Terminal() {
			continue
		}
		if oldestID == "" || j.CreatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = j.CreatedAt
		}
	}
	if oldestID != "" {
		delete(s.jobs, oldestID)
		zap.L().Debug("jobstore: evicted terminal job", zap.String("job_id", oldestID))
	}
}

// Get returns a snapshot of a job record.
func (s *Store) Get(jobID string) (*model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Len reports the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// SetProcessing records a stage checkpoint: current step, progress percent,
// and an idempotent append to the completed-step list. Progress never moves
// backwards; calls against a terminal job are ignored.
func (s *Store) SetProcessing(jobID, step string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return
	}

	job.Status = model.JobStatusProcessing
	job.CurrentStep = step
	if progress > job.Progress {
		job.Progress = progress
	}
	if step != "" && !containsStep(job.StepsCompleted, step) {
		job.StepsCompleted = append(job.StepsCompleted, step)
	}
	job.LastUpdate = time.Now()
}

// Complete moves a job to its completed terminal state with the final
// report and reference data. No-op once terminal.
func (s *Store) Complete(jobID, report string, refs []string, info map[string]model.Reference) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return
	}

	job.Status = model.JobStatusCompleted
	job.CurrentStep = "completed"
	job.Progress = 100
	job.Report = report
	job.References = append([]string(nil), refs...)
	if info != nil {
		job.ReferenceInfo = make(map[string]model.Reference, len(info))
		for k, v := range info {
			job.ReferenceInfo[k] = v
		}
	}
	job.LastUpdate = time.Now()
}

// Fail moves a job to its failed terminal state. No-op once terminal.
func (s *Store) Fail(jobID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return
	}

	job.Status = model.JobStatusFailed
	job.CurrentStep = "failed"
	job.Error = message
	job.LastUpdate = time.Now()
}

func containsStep(steps []string, step string) bool {
	for _, s := range steps {
		if s == step {
			return true
		}
	}
	return false
}
