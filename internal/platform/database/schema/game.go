// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// GameTable represents the 'games' table
type GameTable struct {
	Table      string
	ID         string
	Title      string
	PlatformID string
}

// Game is the schema definition for games
var Game = GameTable{
	Table:      "games",
	ID:         "id",
	Title:      "title",
	PlatformID: "platform_id",
}

func (t GameTable) Columns() []string {
	return []string{t.ID, t.Title, t.PlatformID}
}
