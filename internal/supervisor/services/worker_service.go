// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package services

import (
	"context"
	"fmt"
)

// JobRunner matches the export worker's blocking Run method.
type JobRunner interface {
	Run(ctx context.Context) error
}

// ExportWorkerService supervises the asynchronous export worker. The worker
// blocks in Run until its context is canceled, so the adaptation is direct;
// a crash restarts the worker under the supervisor's backoff policy.
type ExportWorkerService struct {
	worker JobRunner
	name   string
}

// NewExportWorkerService wraps the export worker as a supervised service.
func NewExportWorkerService(worker JobRunner) *ExportWorkerService {
	return &ExportWorkerService{
		worker: worker,
		name:   "export-worker",
	}
}

// Serve implements suture.Service.
func (s *ExportWorkerService) Serve(ctx context.Context) error {
	if err := s.worker.Run(ctx); err != nil {
		return fmt.Errorf("export worker failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *ExportWorkerService) String() string {
	return s.name
}
