// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/metrics"
	"github.com/tomtom215/activitylens/internal/models"
)

// poisonTopic receives jobs whose retries are exhausted.
const poisonTopic = "export.jobs.poison"

// Worker runs queued export jobs off an in-process pub/sub. The router
// stack retries transient failures with exponential backoff; jobs that
// exhaust their attempts land on a poison topic where they are marked
// failed permanently.
type Worker struct {
	service *Service
	pubsub  *gochannel.GoChannel
	router  *message.Router
}

// NewWorker wires the job queue, router middleware, and handlers, and
// attaches the queue to the service as its async publisher.
func NewWorker(service *Service, cfg *config.ExportsConfig) (*Worker, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          false,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create export router: %w", err)
	}

	w := &Worker{
		service: service,
		pubsub:  pubsub,
		router:  router,
	}

	// Outer to inner: Recoverer converts panics to errors, the poison queue
	// catches errors that survive the retry loop, Retry handles transient
	// failures with backoff.
	router.AddMiddleware(middleware.Recoverer)

	poisonQueue, err := middleware.PoisonQueue(pubsub, poisonTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	maxRetries := cfg.JobTries - 1
	if maxRetries < 0 {
		maxRetries = 0
	}
	retry := middleware.Retry{
		MaxRetries:      maxRetries,
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	router.AddNoPublisherHandler("export_job_runner", jobsTopic, pubsub, w.handleJob)
	router.AddNoPublisherHandler("export_job_poison", poisonTopic, pubsub, w.handlePoisoned)

	service.SetPublisher(pubsub)
	return w, nil
}

// Publisher returns the queue the Service publishes jobs to.
func (w *Worker) Publisher() message.Publisher {
	return w.pubsub
}

// Run blocks processing jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.router.Run(ctx)
}

// Running returns a channel closed once the router is running, for
// startup ordering.
func (w *Worker) Running() chan struct{} {
	return w.router.Running()
}

// Close stops the router and the queue.
func (w *Worker) Close() error {
	if err := w.router.Close(); err != nil {
		return err
	}
	return w.pubsub.Close()
}

// handleJob executes one queued export under the configured timeout.
// Returned errors trigger the retry loop.
func (w *Worker) handleJob(msg *message.Message) error {
	var payload jobPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Undecodable payloads can never succeed; fail the ack path and let
		// the poison handler record it.
		return fmt.Errorf("decode export job payload: %w", err)
	}

	s := w.service
	if err := s.jobs.MarkProcessing(payload.JobID, s.now()); err != nil {
		logging.Warn().Err(err).Str("job_id", payload.JobID).Msg("Failed to mark job processing")
	}

	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	metrics.TrackExportJob(true)
	defer metrics.TrackExportJob(false)

	result, err := s.render(ctx, &payload.Request, "async")
	if err != nil {
		logging.Error().
			Err(err).
			Str("job_id", payload.JobID).
			Str("format", payload.Request.Format).
			Interface("filter", payload.Request.Filter).
			Msg("Export job attempt failed")

		// Validation failures never succeed on retry; fail the job now.
		if models.IsValidationError(err) {
			if markErr := s.jobs.MarkFailed(payload.JobID, err.Error(), s.now()); markErr != nil {
				logging.Error().Err(markErr).Str("job_id", payload.JobID).Msg("Failed to record job failure")
			}
			return nil
		}
		metrics.ExportJobRetries.Inc()
		return err
	}

	if err := s.jobs.MarkCompleted(payload.JobID, result.DownloadURL, s.now()); err != nil {
		logging.Error().Err(err).Str("job_id", payload.JobID).Msg("Failed to record job completion")
	}

	logging.Info().
		Str("job_id", payload.JobID).
		Str("file", result.FileName).
		Int("records", result.Records).
		Msg("Export job completed")
	return nil
}

// handlePoisoned marks a job failed after its retries are exhausted.
func (w *Worker) handlePoisoned(msg *message.Message) error {
	reason := msg.Metadata.Get(middleware.ReasonForPoisonedKey)
	if reason == "" {
		reason = "export job failed after retries"
	}

	var payload jobPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Undecodable poisoned export job")
		return nil
	}

	if err := w.service.jobs.MarkFailed(payload.JobID, reason, w.service.now()); err != nil {
		logging.Error().Err(err).Str("job_id", payload.JobID).Msg("Failed to record poisoned job")
	}

	logging.Warn().
		Str("job_id", payload.JobID).
		Str("reason", reason).
		Msg("Export job failed permanently")
	return nil
}
