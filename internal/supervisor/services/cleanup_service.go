// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package services

import (
	"context"
	"time"

	"github.com/tomtom215/activitylens/internal/logging"
)

// ExportCleaner matches the export service's retention sweep.
type ExportCleaner interface {
	Cleanup() (int, error)
}

// CleanupService periodically removes export files older than the retention
// window. Sweep failures are logged, not fatal: a transient filesystem error
// must not crash the job layer.
type CleanupService struct {
	cleaner  ExportCleaner
	interval time.Duration
	name     string
}

// NewCleanupService creates the periodic export cleanup sweeper.
func NewCleanupService(cleaner ExportCleaner, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		cleaner:  cleaner,
		interval: interval,
		name:     "export-cleanup",
	}
}

// Serve implements suture.Service: one sweep at startup, then one per
// interval until the context is canceled.
func (s *CleanupService) Serve(ctx context.Context) error {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CleanupService) sweep() {
	removed, err := s.cleaner.Cleanup()
	if err != nil {
		logging.Warn().Err(err).Msg("Export cleanup sweep failed")
		return
	}
	if removed > 0 {
		logging.Info().Int("removed", removed).Msg("Removed expired export files")
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *CleanupService) String() string {
	return s.name
}
