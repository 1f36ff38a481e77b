// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/gukkan/internal/platform/database/schema"
	"github.com/taibuivan/gukkan/internal/platform/dberr"
	"github.com/taibuivan/gukkan/pkg/pointer"
)

// Querier runs a read query. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads library rows over a direct database connection.
//
// Owner scoping is applied in SQL; the tables carry no row-level security.
type PostgresRepository struct {
	db Querier
}

func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	entryTable = schema.LibraryEntry
	gameTable  = schema.Game
)

// selectRows is the shared projection. The LEFT JOIN keeps orphaned entries
// so the application filter sees them, matching the REST backend.
var selectRows = fmt.Sprintf(`
	SELECT e.%s, e.%s, e.%s, g.%s, g.%s, g.%s
	FROM %s e
	LEFT JOIN %s g ON g.%s = e.%s`,
	entryTable.Count, entryTable.Status, entryTable.UpdatedAt,
	gameTable.ID, gameTable.Title, gameTable.PlatformID,
	entryTable.Table,
	gameTable.Table, gameTable.ID, entryTable.GameID,
)

func (repository *PostgresRepository) ListRecent(context context.Context, limit int) ([]Row, error) {
	query := fmt.Sprintf(`%s
		ORDER BY e.%s DESC
		LIMIT $1;`,
		selectRows, entryTable.UpdatedAt,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_recent")
	}

	return collectRows(rows, "list_recent")
}

func (repository *PostgresRepository) SearchOwned(context context.Context, viewer Viewer, pattern string, limit int) ([]Row, error) {
	query := fmt.Sprintf(`%s
		WHERE e.%s = $1 AND g.%s ILIKE $2
		ORDER BY e.%s DESC
		LIMIT $3;`,
		selectRows,
		entryTable.UserID, gameTable.Title,
		entryTable.UpdatedAt,
	)

	rows, err := repository.db.Query(context, query, viewer.UserID, pattern, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "search_owned")
	}

	return collectRows(rows, "search_owned")
}

// collectRows scans the shared projection. NULL game columns yield a nil Game.
func collectRows(rows pgx.Rows, action string) ([]Row, error) {
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var (
			row                       Row
			gameID, title, platformID *string
		)
		if err := rows.Scan(&row.Count, &row.Status, &row.UpdatedAt, &gameID, &title, &platformID); err != nil {
			return nil, dberr.Wrap(err, "scan_"+action)
		}
		if gameID != nil {
			row.Game = &GameRow{ID: *gameID, Title: pointer.Val(title), PlatformID: pointer.Val(platformID)}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return result, nil
}
