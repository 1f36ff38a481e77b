// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import "github.com/taibuivan/gukkan/pkg/slice"

// Project maps raw rows to cards.
//
// Rows without a game are dropped. Order is preserved and the result is
// never nil. Project has no side effects.
func Project(rows []Row) []GameListItem {
	return slice.FilterMap(rows, func(row Row) (GameListItem, bool) {
		if row.Game == nil {
			return GameListItem{}, false
		}
		return GameListItem{
			ID:       row.Game.ID,
			Title:    row.Game.Title,
			Platform: ParsePlatform(row.Game.PlatformID),
			Count:    row.Count,
			Status:   ParseStatus(row.Status),
		}, true
	})
}
