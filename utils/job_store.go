package utils

import (
	"sync"
	"time"

	"catering-backend/dtos"

	"github.com/google/uuid"
)

// RowOutcome is what an import did with one row.
type RowOutcome int

const (
	RowCreated RowOutcome = iota
	RowUpdated
	RowDeleted
)

// JobStore tracks menu import jobs in memory. Finished jobs are dropped once
// they are older than the retention window.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*dtos.BatchJob
	retention time.Duration
}

func NewJobStore(retention time.Duration) *JobStore {
	if retention <= 0 {
		retention = time.Hour
	}
	return &JobStore{jobs: make(map[uuid.UUID]*dtos.BatchJob), retention: retention}
}

// CleanupOldJobs removes completed or failed jobs past the retention window.
func (js *JobStore) CleanupOldJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	cutoff := time.Now().Add(-js.retention)
	for id, job := range js.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(js.jobs, id)
		}
	}
}

func (js *JobStore) CreateJob(total int) dtos.BatchJob {
	js.CleanupOldJobs()

	js.mu.Lock()
	defer js.mu.Unlock()

	job := &dtos.BatchJob{
		ID:        uuid.New(),
		Status:    dtos.JobStatusPending,
		Total:     total,
		Errors:    []dtos.JobError{},
		StartedAt: time.Now(),
	}
	js.jobs[job.ID] = job
	return copyJob(job)
}

// GetJob returns a snapshot of the job.
func (js *JobStore) GetJob(id uuid.UUID) (dtos.BatchJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, ok := js.jobs[id]
	if !ok {
		return dtos.BatchJob{}, false
	}
	return copyJob(job), true
}

func (js *JobStore) update(id uuid.UUID, fn func(*dtos.BatchJob)) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, ok := js.jobs[id]; ok {
		fn(job)
	}
}

func (js *JobStore) SetProcessing(id uuid.UUID) {
	js.update(id, func(job *dtos.BatchJob) { job.Status = dtos.JobStatusProcessing })
}

// Record counts one successfully handled row.
func (js *JobStore) Record(id uuid.UUID, outcome RowOutcome) {
	js.update(id, func(job *dtos.BatchJob) {
		switch outcome {
		case RowCreated:
			job.Created++
		case RowUpdated:
			job.Updated++
		case RowDeleted:
			job.Deleted++
		}
		advance(job)
	})
}

// Fail counts one rejected row and keeps its field errors.
func (js *JobStore) Fail(id uuid.UUID, row int, item string, fields map[string]string) {
	js.update(id, func(job *dtos.BatchJob) {
		job.Failed++
		job.Errors = append(job.Errors, dtos.JobError{Row: row, Item: item, Fields: fields})
		advance(job)
	})
}

// CountDeleted records deletions that do not correspond to an import row.
func (js *JobStore) CountDeleted(id uuid.UUID, n int) {
	js.update(id, func(job *dtos.BatchJob) { job.Deleted += n })
}

func (js *JobStore) CompleteJob(id uuid.UUID, status string) {
	js.update(id, func(job *dtos.BatchJob) {
		job.Status = status
		job.Progress = 100
		now := time.Now()
		job.CompletedAt = &now
	})
}

func advance(job *dtos.BatchJob) {
	job.Processed++
	if job.Total > 0 {
		job.Progress = job.Processed * 100 / job.Total
	}
	if job.Progress > 99 {
		job.Progress = 99
	}
}

func copyJob(job *dtos.BatchJob) dtos.BatchJob {
	out := *job
	out.Errors = append([]dtos.JobError(nil), job.Errors...)
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
