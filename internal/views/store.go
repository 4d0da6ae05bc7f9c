// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package views stores named filter presets per user. Views live in the
// shared TTL cache; an untouched user's list expires with the retention
// window rather than accumulating forever.
package views

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/activitylens/internal/cache"
	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/metrics"
	"github.com/tomtom215/activitylens/internal/models"
	"github.com/tomtom215/activitylens/internal/validation"
)

const keyPrefix = "saved_views:"

// Store manages per-user saved view lists. Lists are capped; creating past
// the cap evicts the oldest view first.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	cfg   *config.ViewsConfig

	now func() time.Time
}

// New creates a saved-view store backed by its own TTL cache sized to the
// configured retention window.
func New(cfg *config.ViewsConfig) *Store {
	return &Store{
		cache: cache.New(cfg.TTL),
		cfg:   cfg,
		now:   time.Now,
	}
}

// List returns a user's saved views, newest first. Unknown users get an
// empty list.
func (s *Store) List(userID string) []models.SavedView {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load(userID)
	out := make([]models.SavedView, len(stored))
	for i, v := range stored {
		out[len(stored)-1-i] = v
	}
	return out
}

// Get returns a single saved view by id.
func (s *Store) Get(userID, viewID string) (*models.SavedView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.load(userID) {
		if v.ID == viewID {
			view := v
			return &view, nil
		}
	}
	return nil, models.NewNotFoundError("saved view", viewID)
}

// Create validates and stores a new view for the user. When the user is at
// the cap the oldest view is evicted to make room.
func (s *Store) Create(userID string, view *models.SavedView) (*models.SavedView, error) {
	if verr := validation.ValidateStruct(view); verr != nil {
		apiErr := verr.ToAPIError()
		return nil, models.NewValidationError(apiErr.Message, apiErr.Details)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := models.SavedView{
		ID:        uuid.NewString(),
		Name:      view.Name,
		Filter:    view.Filter,
		CreatedAt: s.now(),
	}

	stored := s.load(userID)
	evicted := 0
	if len(stored) >= s.cfg.MaxPerUser {
		evicted = len(stored) - s.cfg.MaxPerUser + 1
		logging.Debug().
			Str("user_id", userID).
			Int("evicted", evicted).
			Msg("Saved view cap reached, evicting oldest")
		stored = stored[evicted:]
	}
	stored = append(stored, created)
	s.store(userID, stored)
	metrics.RecordSavedView(1, 0, evicted)

	return &created, nil
}

// Delete removes a view from the user's list. Deleting an unknown id is a
// no-op.
func (s *Store) Delete(userID, viewID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load(userID)
	kept := stored[:0]
	for _, v := range stored {
		if v.ID != viewID {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(stored) {
		return
	}
	metrics.RecordSavedView(0, 1, 0)
	if len(kept) == 0 {
		s.cache.Delete(userKey(userID))
		return
	}
	s.store(userID, kept)
}

// load returns the stored list oldest first. Callers hold s.mu.
func (s *Store) load(userID string) []models.SavedView {
	data, ok := s.cache.Get(userKey(userID))
	metrics.RecordCacheAccess("views", ok)
	if !ok {
		return nil
	}
	stored, ok := data.([]models.SavedView)
	if !ok {
		return nil
	}
	return stored
}

// store saves the list and renews the user's retention window.
func (s *Store) store(userID string, views []models.SavedView) {
	s.cache.Set(userKey(userID), views)
}

func userKey(userID string) string {
	if userID == "" {
		userID = models.AnonymousUser
	}
	return fmt.Sprintf("%s%s", keyPrefix, userID)
}
