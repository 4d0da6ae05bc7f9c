// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/models"
)

// setupWorker builds a service wired to a running background worker and
// returns both. The worker is stopped on test cleanup.
func setupWorker(t *testing.T, cfg *config.ExportsConfig) (*Service, *Worker) {
	t.Helper()
	db := setupExportDB(t)
	jobs := setupJobStore(t)

	svc, err := NewService(db, cfg, jobs)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	worker, err := NewWorker(svc, cfg)
	if err != nil {
		t.Fatalf("NewWorker failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()
	select {
	case <-worker.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("Worker did not start")
	}
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("Worker did not stop")
		}
	})

	return svc, worker
}

// waitForTerminal polls job status until it reaches a final state.
func waitForTerminal(t *testing.T, svc *Service, jobID string) *models.ExportJob {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.Status(jobID)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if job.IsTerminal() {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("Job never reached a terminal state")
	return nil
}

func TestAsyncExportLifecycle(t *testing.T) {
	cfg := testExportsConfig(t)
	cfg.QueueThreshold = 0
	svc, _ := setupWorker(t, cfg)
	seedExportRecords(t, svc.db, 3)

	outcome, err := svc.Export(context.Background(), &models.ExportRequest{Format: models.FormatCSV})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if outcome.Result != nil || outcome.Queued == nil {
		t.Fatalf("Expected queued outcome, got %+v", outcome)
	}
	queued := outcome.Queued
	if queued.JobID == "" || queued.Status != models.StatusPending || queued.Records != 3 {
		t.Errorf("Queued = %+v", queued)
	}

	job := waitForTerminal(t, svc, queued.JobID)
	if job.Status != models.StatusCompleted {
		t.Fatalf("Status = %q (%s), want completed", job.Status, job.Message)
	}
	if job.Progress != 100 || job.DownloadURL == nil {
		t.Fatalf("Job = %+v", job)
	}

	fileName := filepath.Base(*job.DownloadURL)
	if _, err := os.Stat(filepath.Join(cfg.Dir, fileName)); err != nil {
		t.Errorf("Exported file missing: %v", err)
	}
	if _, err := svc.ResolveDownload(fileName); err != nil {
		t.Errorf("ResolveDownload failed: %v", err)
	}
}

func TestSmallExportStaysSynchronous(t *testing.T) {
	cfg := testExportsConfig(t)
	cfg.QueueThreshold = 10
	svc, _ := setupWorker(t, cfg)
	seedExportRecords(t, svc.db, 2)

	outcome, err := svc.Export(context.Background(), &models.ExportRequest{Format: models.FormatJSON})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if outcome.Result == nil || outcome.Queued != nil {
		t.Fatalf("Expected synchronous outcome below threshold, got %+v", outcome)
	}
}

// brokenRenderer always fails, standing in for a renderer hitting a full
// or unwritable disk.
type brokenRenderer struct{}

func (brokenRenderer) Format() string    { return models.FormatCSV }
func (brokenRenderer) Extension() string { return "csv" }

func (brokenRenderer) Render(string, *Document) error {
	return errors.New("no space left on device")
}

func TestAsyncExportFailureMarksJob(t *testing.T) {
	cfg := testExportsConfig(t)
	cfg.QueueThreshold = 0
	cfg.JobTries = 1
	svc, _ := setupWorker(t, cfg)
	seedExportRecords(t, svc.db, 1)

	svc.Registry().Register(brokenRenderer{})

	outcome, err := svc.Export(context.Background(), &models.ExportRequest{Format: models.FormatCSV})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	job := waitForTerminal(t, svc, outcome.Queued.JobID)
	if job.Status != models.StatusFailed {
		t.Fatalf("Status = %q, want failed", job.Status)
	}
	if job.Message == "" {
		t.Error("Failed job has no message")
	}
	if job.DownloadURL != nil {
		t.Error("Failed job has a download URL")
	}
}
