// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/models"
)

// jobKeyPrefix namespaces export job records in BadgerDB.
const jobKeyPrefix = "export_job:"

// JobStore persists export job status in BadgerDB. Entries carry a TTL so
// completed and abandoned jobs age out on their own; a lookup past the TTL
// reports not_found.
type JobStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewJobStore opens a BadgerDB-backed job store at path. An empty path
// opens an in-memory store.
func NewJobStore(path string, ttl time.Duration) (*JobStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStore{db: db, ttl: ttl}, nil
}

// Close releases the underlying store.
func (s *JobStore) Close() error {
	return s.db.Close()
}

// Put writes a job record, refreshing its retention TTL.
func (s *JobStore) Put(job *models.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal export job: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(jobKeyPrefix+job.JobID), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// Get returns a job's status. Missing or expired jobs yield a not_found
// status record rather than an error, matching the polling contract.
func (s *JobStore) Get(jobID string) (*models.ExportJob, error) {
	var job models.ExportJob

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(jobKeyPrefix + jobID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &models.ExportJob{
			JobID:  jobID,
			Status: models.StatusNotFound,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// CreatePending records a freshly queued job.
func (s *JobStore) CreatePending(jobID string, now time.Time) error {
	return s.Put(&models.ExportJob{
		JobID:     jobID,
		Status:    models.StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// MarkProcessing moves a job into the processing state.
func (s *JobStore) MarkProcessing(jobID string, now time.Time) error {
	return s.transition(jobID, now, func(job *models.ExportJob) {
		job.Status = models.StatusProcessing
		job.Progress = 50
	})
}

// MarkCompleted records a successful render with its download URL.
func (s *JobStore) MarkCompleted(jobID, downloadURL string, now time.Time) error {
	return s.transition(jobID, now, func(job *models.ExportJob) {
		job.Status = models.StatusCompleted
		job.Progress = 100
		job.Message = ""
		job.DownloadURL = &downloadURL
	})
}

// MarkFailed records a permanent failure with its error message.
func (s *JobStore) MarkFailed(jobID, message string, now time.Time) error {
	return s.transition(jobID, now, func(job *models.ExportJob) {
		job.Status = models.StatusFailed
		job.Message = message
		job.DownloadURL = nil
	})
}

func (s *JobStore) transition(jobID string, now time.Time, mutate func(*models.ExportJob)) error {
	job, err := s.Get(jobID)
	if err != nil {
		return err
	}
	if job.Status == models.StatusNotFound {
		job.CreatedAt = now
	}
	mutate(job)
	job.UpdatedAt = now
	return s.Put(job)
}
