// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/database"
	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/metrics"
	"github.com/tomtom215/activitylens/internal/models"
)

// jobsTopic carries queued export jobs to the background worker.
const jobsTopic = "export.jobs"

// ErrPathTraversal marks a download request that escapes the export
// directory. Callers respond with forbidden semantics.
var ErrPathTraversal = errors.New("export path escapes storage directory")

// Outcome is the result of an export request from either execution path:
// exactly one of Result (synchronous) or Queued (asynchronous) is set.
type Outcome struct {
	Result *models.ExportResult `json:"result,omitempty"`
	Queued *models.ExportQueued `json:"queued,omitempty"`
}

// Executor runs a validated export request. The synchronous implementation
// renders immediately; the asynchronous one enqueues a background job.
// Callers stay agnostic to which ran.
type Executor interface {
	Execute(ctx context.Context, req *models.ExportRequest, records int) (*Outcome, error)
}

// jobPayload is the queued message body for asynchronous exports.
type jobPayload struct {
	JobID   string               `json:"job_id"`
	Request models.ExportRequest `json:"request"`
}

// Service is the export pipeline entry point. It validates requests,
// enforces the row cap, picks the execution path, tracks job status, and
// confines downloads to the export directory.
type Service struct {
	db       *database.DB
	cfg      *config.ExportsConfig
	registry *Registry
	jobs     *JobStore

	pubMu     sync.RWMutex
	publisher message.Publisher

	now func() time.Time
}

// NewService builds the export pipeline. Until a worker attaches a
// publisher the asynchronous path is disabled and every export renders
// synchronously.
func NewService(db *database.DB, cfg *config.ExportsConfig, jobs *JobStore) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	return &Service{
		db:       db,
		cfg:      cfg,
		registry: NewRegistry(),
		jobs:     jobs,
		now:      time.Now,
	}, nil
}

// Registry exposes the renderer registry, letting deployments disable
// formats at startup.
func (s *Service) Registry() *Registry {
	return s.registry
}

// SetPublisher attaches the queue used for asynchronous exports. A nil
// publisher forces every export onto the synchronous path. Guarded so a
// worker can attach after the service has started serving requests.
func (s *Service) SetPublisher(p message.Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publisher = p
}

func (s *Service) asyncPublisher() message.Publisher {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	return s.publisher
}

// Export validates and runs an export request. Requests matching more
// records than the configured cap are rejected, never truncated.
func (s *Service) Export(ctx context.Context, req *models.ExportRequest) (*Outcome, error) {
	if !s.cfg.FormatEnabled(req.Format) {
		return nil, models.NewValidationError(
			fmt.Sprintf("export format %q is not enabled", req.Format), nil)
	}
	if len(req.Columns) == 0 {
		req.Columns = s.cfg.Columns
	}

	count, err := s.db.CountActivities(ctx, &req.Filter)
	if err != nil {
		return nil, err
	}
	if count > s.cfg.MaxRecords {
		metrics.RecordExportRejection()
		return nil, models.NewValidationError(
			fmt.Sprintf("export of %d records exceeds the maximum of %d; narrow the filter",
				count, s.cfg.MaxRecords),
			map[string]interface{}{
				"record_count": count,
				"max_records":  s.cfg.MaxRecords,
			})
	}

	var executor Executor
	if pub := s.asyncPublisher(); pub != nil && count > s.cfg.QueueThreshold {
		executor = &asyncExecutor{service: s, publisher: pub}
	} else {
		executor = &syncExecutor{service: s}
	}

	outcome, err := executor.Execute(ctx, req, count)
	if err != nil {
		return nil, err
	}

	if s.cfg.CleanupAutoRun {
		s.cleanupQuietly()
	}
	return outcome, nil
}

// Status reports an export job's lifecycle state. Unknown or expired jobs
// report not_found.
func (s *Service) Status(jobID string) (*models.ExportJob, error) {
	return s.jobs.Get(jobID)
}

// ResolveDownload maps a requested file name to its path under the export
// directory, rejecting traversal and missing files.
func (s *Service) ResolveDownload(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}

	dir, err := filepath.Abs(s.cfg.Dir)
	if err != nil {
		return "", models.NewSystemError("resolve export directory", err)
	}
	path := filepath.Join(dir, name)
	if rel, err := filepath.Rel(dir, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", models.NewNotFoundError("export file", name)
	}
	return path, nil
}

// render materializes a request into a file and returns the result. Shared
// by the synchronous path and the background worker.
func (s *Service) render(ctx context.Context, req *models.ExportRequest, mode string) (*models.ExportResult, error) {
	started := time.Now()
	renderer, format, err := s.registry.Resolve(req.Format)
	if err != nil {
		return nil, err
	}

	activities, err := s.db.AllActivities(ctx, &req.Filter, s.cfg.MaxRecords)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	fileName := exportFileName(now, renderer.Extension())
	path := filepath.Join(s.cfg.Dir, fileName)

	doc := &Document{
		Activities:  activities,
		Columns:     req.Columns,
		Filter:      req.Filter,
		GeneratedAt: now,
	}
	if err := renderer.Render(path, doc); err != nil {
		metrics.RecordExport(format, mode, 0, time.Since(started), err)
		return nil, models.NewSystemError("render export", err)
	}
	metrics.RecordExport(format, mode, len(activities), time.Since(started), nil)

	logging.Info().
		Str("format", format).
		Str("file", fileName).
		Int("records", len(activities)).
		Msg("Export rendered")

	return &models.ExportResult{
		FileName:    fileName,
		DownloadURL: s.downloadURL(fileName),
		Records:     len(activities),
		Format:      format,
	}, nil
}

func (s *Service) downloadURL(fileName string) string {
	return strings.TrimRight(s.cfg.DownloadBaseURL, "/") + "/" + fileName
}

// Cleanup removes export files older than the retention window and returns
// the number removed.
func (s *Service) Cleanup() (int, error) {
	removed, err := CleanOldExports(s.cfg.Dir, s.cfg.CleanupAfter)
	if err != nil {
		return 0, models.NewSystemError("clean export directory", err)
	}
	metrics.RecordExportCleanup(removed)
	return removed, nil
}

func (s *Service) cleanupQuietly() {
	removed, err := s.Cleanup()
	if err != nil {
		logging.Warn().Err(err).Msg("Export cleanup failed")
		return
	}
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Cleaned up old export files")
	}
}

// syncExecutor renders the export inline and returns the download
// reference immediately.
type syncExecutor struct {
	service *Service
}

func (e *syncExecutor) Execute(ctx context.Context, req *models.ExportRequest, _ int) (*Outcome, error) {
	result, err := e.service.render(ctx, req, "sync")
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: result}, nil
}

// asyncExecutor records a pending job, publishes it to the worker, and
// returns the job id for status polling. It carries the publisher it was
// resolved with so a concurrent SetPublisher cannot change it mid-request.
type asyncExecutor struct {
	service   *Service
	publisher message.Publisher
}

func (e *asyncExecutor) Execute(ctx context.Context, req *models.ExportRequest, records int) (*Outcome, error) {
	s := e.service
	jobID := uuid.NewString()
	now := s.now()

	if err := s.jobs.CreatePending(jobID, now); err != nil {
		return nil, models.NewSystemError("create export job", err)
	}

	payload, err := json.Marshal(jobPayload{JobID: jobID, Request: *req})
	if err != nil {
		return nil, models.NewSystemError("encode export job", err)
	}

	msg := message.NewMessage(jobID, payload)
	if err := e.publisher.Publish(jobsTopic, msg); err != nil {
		if markErr := s.jobs.MarkFailed(jobID, "failed to enqueue export job", s.now()); markErr != nil {
			logging.Error().Err(markErr).Str("job_id", jobID).Msg("Failed to record enqueue failure")
		}
		return nil, models.NewSystemError("enqueue export job", err)
	}

	metrics.RecordExportQueued()
	logging.Info().
		Str("job_id", jobID).
		Str("format", req.Format).
		Int("records", records).
		Msg("Export job queued")

	return &Outcome{Queued: &models.ExportQueued{
		JobID:   jobID,
		Status:  models.StatusPending,
		Records: records,
	}}, nil
}
