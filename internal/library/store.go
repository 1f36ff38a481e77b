// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"time"
)

// # Raw Rows

// GameRow is the joined game as stored.
type GameRow struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PlatformID string `json:"platform_id"`
}

// Row is one library entry with its game, as returned by the backend.
//
// Game is nil when the entry references a game that cannot be resolved.
type Row struct {
	Count     int       `json:"count"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	Game      *GameRow  `json:"game"`
}

// Viewer is the owner a search is scoped to.
type Viewer struct {
	UserID      string
	AccessToken string
}

// # Repository

// Repository defines the data access contract.
//
// Both methods return rows ordered by updated_at descending, at most limit
// rows, and never filter out orphaned entries themselves.
type Repository interface {
	// ListRecent returns the most recently updated entries across all users.
	ListRecent(context context.Context, limit int) ([]Row, error)

	// SearchOwned returns the viewer's entries whose game title matches
	// pattern, a LIKE pattern with metacharacters already escaped.
	SearchOwned(context context.Context, viewer Viewer, pattern string, limit int) ([]Row, error)
}
