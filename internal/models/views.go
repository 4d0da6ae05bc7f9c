// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"time"
)

// SavedView is a named filter preset scoped to a user. Per-user lists are
// capped; the oldest view is evicted first when the cap is exceeded.
type SavedView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name" validate:"required,max=100"`
	Filter    ActivityFilter `json:"filter"`
	CreatedAt time.Time      `json:"created_at"`
}

// AnonymousUser is the scope used for saved views when no user id is given.
const AnonymousUser = "anonymous"
