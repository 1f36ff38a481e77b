// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns the library queries use, so
// SQL and PostgREST filters are assembled from one definition.
package schema

// LibraryEntryTable represents the 'library_entries' table
type LibraryEntryTable struct {
	Table     string
	UserID    string
	GameID    string
	Count     string
	Status    string
	UpdatedAt string
}

// LibraryEntry is the schema definition for library_entries
var LibraryEntry = LibraryEntryTable{
	Table:     "library_entries",
	UserID:    "user_id",
	GameID:    "game_id",
	Count:     "count",
	Status:    "status",
	UpdatedAt: "updated_at",
}

func (t LibraryEntryTable) Columns() []string {
	return []string{t.UserID, t.GameID, t.Count, t.Status, t.UpdatedAt}
}
