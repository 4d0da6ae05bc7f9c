// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/models"
)

// ResolverFunc resolves an actor id of one type to a display name.
// Returns false when the referent no longer exists.
type ResolverFunc func(ctx context.Context, id int64) (string, bool)

// ResolverRegistry maps polymorphic type tags to resolver functions.
// Types without a registered resolver fall back to the actors table.
// Lookups must tolerate missing referents: a failed resolution is not an
// error, the caller degrades to a placeholder display value.
type ResolverRegistry struct {
	mu        sync.RWMutex
	resolvers map[string]ResolverFunc
	db        *DB
}

// NewResolverRegistry creates a registry backed by the actors table.
func NewResolverRegistry(db *DB) *ResolverRegistry {
	return &ResolverRegistry{
		resolvers: make(map[string]ResolverFunc),
		db:        db,
	}
}

// Register installs a resolver for a type tag, replacing any existing one.
func (r *ResolverRegistry) Register(typeTag string, fn ResolverFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[typeTag] = fn
}

// Resolve maps a (type, id) reference to a display name. Custom resolvers
// take precedence; otherwise the actors table is consulted.
func (r *ResolverRegistry) Resolve(ctx context.Context, typeTag string, id int64) (string, bool) {
	r.mu.RLock()
	fn, ok := r.resolvers[typeTag]
	r.mu.RUnlock()

	if ok {
		return fn(ctx, id)
	}
	return r.lookupActor(ctx, typeTag, id)
}

// ResolveCausers fills in CauserName for each activity in place. Activities
// whose causer cannot be resolved keep an empty name and render as their
// fallback display value.
func (r *ResolverRegistry) ResolveCausers(ctx context.Context, activities []models.Activity) {
	cache := make(map[actorKey]string)

	for i := range activities {
		a := &activities[i]
		if !a.HasCauser() {
			continue
		}

		key := actorKey{typeTag: *a.CauserType, id: *a.CauserID}
		if name, seen := cache[key]; seen {
			a.CauserName = name
			continue
		}

		name, ok := r.Resolve(ctx, key.typeTag, key.id)
		if !ok {
			cache[key] = ""
			continue
		}
		cache[key] = name
		a.CauserName = name
	}
}

type actorKey struct {
	typeTag string
	id      int64
}

// lookupActor reads the actors table.
func (r *ResolverRegistry) lookupActor(ctx context.Context, typeTag string, id int64) (string, bool) {
	var name string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT name FROM actors WHERE actor_type = ? AND actor_id = ?`, typeTag, id).Scan(&name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Warn().Err(err).Str("actor_type", typeTag).Int64("actor_id", id).Msg("Actor lookup failed")
		}
		return "", false
	}
	return name, true
}

// UpsertActor records an actor's display name for resolver lookups.
func (db *DB) UpsertActor(ctx context.Context, typeTag string, id int64, name string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO actors (actor_type, actor_id, name) VALUES (?, ?, ?)
		ON CONFLICT (actor_type, actor_id) DO UPDATE SET name = excluded.name`,
		typeTag, id, name)
	return err
}

// DeleteActor removes an actor, simulating a deleted referent. Activities
// pointing at it degrade to placeholder display values.
func (db *DB) DeleteActor(ctx context.Context, typeTag string, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM actors WHERE actor_type = ? AND actor_id = ?`, typeTag, id)
	return err
}
