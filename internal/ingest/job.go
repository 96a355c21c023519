// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState is the lifecycle state of an ingestion job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobPartial   JobState = "partial" // some sources failed, some succeeded
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Job tracks one ingestion run for a product.
type Job struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`

	State JobState `json:"state"`

	// SourceErrors maps source name to its failure, for sources that
	// could not complete.
	SourceErrors map[string]string `json:"source_errors,omitempty"`

	ReviewsFetched int `json:"reviews_fetched"`
	ReviewsStored  int `json:"reviews_stored"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// jobRegistry is an in-memory job store with bounded history.
type jobRegistry struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	order   []string
	maxJobs int
}

func newJobRegistry(maxJobs int) *jobRegistry {
	if maxJobs <= 0 {
		maxJobs = 1000
	}
	return &jobRegistry{
		jobs:    make(map[string]*Job),
		maxJobs: maxJobs,
	}
}

// create registers a new pending job and returns it.
func (r *jobRegistry) create(productID string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := &Job{
		ID:        uuid.NewString(),
		ProductID: productID,
		State:     JobPending,
		CreatedAt: time.Now().UTC(),
	}
	r.jobs[job.ID] = job
	r.order = append(r.order, job.ID)

	for len(r.order) > r.maxJobs {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.jobs, oldest)
	}
	return job
}

// get returns a copy of the job, so callers never see concurrent
// mutation.
func (r *jobRegistry) get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return r.snapshot(job), true
}

func (r *jobRegistry) snapshot(job *Job) Job {
	out := *job
	if job.SourceErrors != nil {
		out.SourceErrors = make(map[string]string, len(job.SourceErrors))
		for k, v := range job.SourceErrors {
			out.SourceErrors[k] = v
		}
	}
	return out
}

// start transitions a job to running.
func (r *jobRegistry) start(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		now := time.Now().UTC()
		job.State = JobRunning
		job.StartedAt = &now
	}
}

// finish records counts and the terminal state.
func (r *jobRegistry) finish(id string, state JobState, fetched, stored int, sourceErrors map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		now := time.Now().UTC()
		job.State = state
		job.ReviewsFetched = fetched
		job.ReviewsStored = stored
		job.SourceErrors = sourceErrors
		job.FinishedAt = &now
	}
}
