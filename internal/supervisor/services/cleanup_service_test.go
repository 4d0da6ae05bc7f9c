// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockCleaner struct {
	calls atomic.Int32
	err   error
}

func (m *mockCleaner) Cleanup() (int, error) {
	m.calls.Add(1)
	if m.err != nil {
		return 0, m.err
	}
	return 1, nil
}

func TestCleanupService_Interface(t *testing.T) {
	var _ suture.Service = (*CleanupService)(nil)
	var _ suture.Service = (*ExportWorkerService)(nil)
}

func TestCleanupService_SweepsOnStartupAndInterval(t *testing.T) {
	cleaner := &mockCleaner{}
	svc := NewCleanupService(cleaner, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}

	// One startup sweep plus several interval ticks
	if got := cleaner.calls.Load(); got < 3 {
		t.Errorf("Cleanup called %d times, want at least 3", got)
	}
}

func TestCleanupService_SurvivesSweepFailure(t *testing.T) {
	cleaner := &mockCleaner{err: errors.New("disk detached")}
	svc := NewCleanupService(cleaner, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded after failures", err)
	}
	if cleaner.calls.Load() < 2 {
		t.Error("sweeping stopped after first failure")
	}
}

func TestCleanupService_DefaultInterval(t *testing.T) {
	svc := NewCleanupService(&mockCleaner{}, 0)
	if svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h default", svc.interval)
	}
}

type mockRunner struct {
	err error
	ran atomic.Bool
}

func (m *mockRunner) Run(ctx context.Context) error {
	m.ran.Store(true)
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return nil
}

func TestExportWorkerService_RunsUntilCanceled(t *testing.T) {
	runner := &mockRunner{}
	svc := NewExportWorkerService(runner)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	if !runner.ran.Load() {
		t.Error("worker Run was never invoked")
	}
}

func TestExportWorkerService_PropagatesFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("queue backend gone")}
	svc := NewExportWorkerService(runner)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, runner.err) {
		t.Errorf("Serve = %v, want wrapped runner error", err)
	}
}
