// Package scheduler runs the gateway's periodic maintenance jobs: cache
// cleanup and preview retention.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo contains information about a scheduled job.
type JobInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     JobStatus  `json:"status"`
	LastRun    time.Time  `json:"lastRun"`
	NextRun    time.Time  `json:"nextRun"`
	Schedule   string     `json:"schedule"`
	RunCount   int        `json:"runCount"`
	ErrorCount int        `json:"errorCount"`
	LastError  string     `json:"lastError,omitempty"`
	gocronJob  gocron.Job `json:"-"`
}

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler manages the maintenance jobs.
type Scheduler struct {
	gocron gocron.Scheduler
	jobs   map[string]*JobInfo
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		jobs:   make(map[string]*JobInfo),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	log.Info("Starting job scheduler")
	s.gocron.Start()

	for id, jobInfo := range s.jobs {
		if nextRun, err := jobInfo.gocronJob.NextRun(); err == nil {
			jobInfo.NextRun = nextRun
		} else {
			log.Warn("Failed to get next run time for job", "id", id, "error", err)
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() error {
	log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddJob registers a job. Jobs run in singleton mode so a slow run never
// overlaps its successor.
func (s *Scheduler) AddJob(id, name, scheduleString string, jobDef gocron.JobDefinition, jobFunc JobFunc) error {
	jobInfo := &JobInfo{
		ID:       id,
		Name:     name,
		Status:   JobStatusScheduled,
		Schedule: scheduleString,
	}

	job, err := s.gocron.NewJob(jobDef,
		gocron.NewTask(s.wrapJobFunc(id, jobFunc)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	jobInfo.gocronJob = job

	s.jobs[id] = jobInfo
	log.Info("Added job to scheduler", "id", id, "name", name, "schedule", scheduleString)
	return nil
}

// RunJobNow manually triggers a job to run immediately.
func (s *Scheduler) RunJobNow(id string) error {
	jobInfo, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	log.Info("Manually triggering job", "id", id, "name", jobInfo.Name)
	if err := jobInfo.gocronJob.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJobs returns all job information.
func (s *Scheduler) GetJobs() map[string]*JobInfo {
	return s.jobs
}

// GetJob returns information about a specific job.
func (s *Scheduler) GetJob(id string) (*JobInfo, bool) {
	job, exists := s.jobs[id]
	return job, exists
}

// wrapJobFunc wraps a job function to update job statistics.
func (s *Scheduler) wrapJobFunc(id string, jobFunc JobFunc) func() {
	return func() {
		jobInfo := s.jobs[id]
		if jobInfo == nil {
			log.Error("Job info not found", "id", id)
			return
		}

		log.Info("Starting job", "id", id, "name", jobInfo.Name)
		jobInfo.Status = JobStatusRunning
		jobInfo.LastRun = time.Now()
		if nextRun, err := jobInfo.gocronJob.NextRun(); err == nil {
			jobInfo.NextRun = nextRun
		}
		jobInfo.RunCount++

		if err := jobFunc(s.ctx); err != nil {
			log.Error("Job failed", "id", id, "name", jobInfo.Name, "error", err)
			jobInfo.Status = JobStatusFailed
			jobInfo.ErrorCount++
			jobInfo.LastError = err.Error()
		} else {
			log.Info("Job completed", "id", id, "name", jobInfo.Name)
			jobInfo.Status = JobStatusCompleted
			jobInfo.LastError = ""
		}
	}
}
