// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gukkan/internal/library"
	"github.com/taibuivan/gukkan/internal/platform/apperr"
)

// scannedRow is one result row: count, status, updated_at, then the
// nullable game columns.
type scannedRow struct {
	count      int
	status     string
	updatedAt  time.Time
	gameID     *string
	title      *string
	platformID *string
}

// fakeRows replays scannedRows through the pgx.Rows contract.
type fakeRows struct {
	rows    []scannedRow
	cursor  int
	err     error
	closed  bool
	scanErr error
}

func (rows *fakeRows) Close()                                       { rows.closed = true }
func (rows *fakeRows) Err() error                                   { return rows.err }
func (rows *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (rows *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (rows *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (rows *fakeRows) RawValues() [][]byte                          { return nil }
func (rows *fakeRows) Conn() *pgx.Conn                              { return nil }

func (rows *fakeRows) Next() bool {
	if rows.cursor >= len(rows.rows) {
		return false
	}
	rows.cursor++
	return true
}

func (rows *fakeRows) Scan(dest ...any) error {
	if rows.scanErr != nil {
		return rows.scanErr
	}
	if len(dest) != 6 {
		return fmt.Errorf("scan: want 6 targets, got %d", len(dest))
	}

	current := rows.rows[rows.cursor-1]
	*dest[0].(*int) = current.count
	*dest[1].(*string) = current.status
	*dest[2].(*time.Time) = current.updatedAt
	*dest[3].(**string) = current.gameID
	*dest[4].(**string) = current.title
	*dest[5].(**string) = current.platformID
	return nil
}

// fakeQuerier records the last query and answers with canned rows.
type fakeQuerier struct {
	rows *fakeRows
	err  error

	sql  string
	args []any
}

func (querier *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	querier.sql = sql
	querier.args = args
	if querier.err != nil {
		return nil, querier.err
	}
	return querier.rows, nil
}

func text(value string) *string { return &value }

/*
TestPostgresRepository_SearchOwned scopes to the viewer, passes the pattern
and limit as arguments and maps NULL game columns to a nil Game.
*/
func TestPostgresRepository_SearchOwned(t *testing.T) {
	updated := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: []scannedRow{
		{count: 1, status: "クリア", updatedAt: updated, gameID: text("botw"), title: text("ゼルダの伝説"), platformID: text("Switch")},
		{count: 2, status: "積み中", updatedAt: updated.Add(-time.Hour)},
		{count: 1, status: "中断", updatedAt: updated.Add(-2 * time.Hour), gameID: text("untitled")},
	}}
	querier := &fakeQuerier{rows: rows}

	result, err := library.NewPostgresRepository(querier).SearchOwned(context.Background(), viewer, "%Zelda%", 30)
	require.NoError(t, err)

	assert.Equal(t, []any{"user-1", "%Zelda%", 30}, querier.args)
	assert.Contains(t, querier.sql, "LEFT JOIN games g ON g.id = e.game_id")
	assert.Contains(t, querier.sql, "WHERE e.user_id = $1 AND g.title ILIKE $2")
	assert.Contains(t, querier.sql, "ORDER BY e.updated_at DESC")
	assert.Contains(t, querier.sql, "LIMIT $3")
	assert.True(t, rows.closed)

	require.Len(t, result, 3)
	require.NotNil(t, result[0].Game)
	assert.Equal(t, library.GameRow{ID: "botw", Title: "ゼルダの伝説", PlatformID: "Switch"}, *result[0].Game)
	assert.Equal(t, updated, result[0].UpdatedAt)
	assert.Nil(t, result[1].Game)
	assert.Equal(t, 2, result[1].Count)
	require.NotNil(t, result[2].Game)
	assert.Equal(t, "", result[2].Game.Title)
}

func TestPostgresRepository_ListRecent(t *testing.T) {
	querier := &fakeQuerier{rows: &fakeRows{}}

	result, err := library.NewPostgresRepository(querier).ListRecent(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, result)

	assert.Equal(t, []any{30}, querier.args)
	assert.NotContains(t, querier.sql, "user_id")
	assert.Contains(t, querier.sql, "LIMIT $1")
}

/*
TestPostgresRepository_Errors wraps query, scan and iteration failures.
*/
func TestPostgresRepository_Errors(t *testing.T) {
	row := scannedRow{count: 1, status: "クリア", gameID: text("botw")}

	tests := []struct {
		name    string
		querier *fakeQuerier
		status  int
	}{
		{"query", &fakeQuerier{err: errors.New("syntax error")}, http.StatusInternalServerError},
		{"deadline", &fakeQuerier{err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
		{"scan", &fakeQuerier{rows: &fakeRows{rows: []scannedRow{row}, scanErr: errors.New("bad type")}}, http.StatusInternalServerError},
		{"iteration", &fakeQuerier{rows: &fakeRows{err: errors.New("conn reset")}}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := library.NewPostgresRepository(tt.querier).SearchOwned(context.Background(), viewer, "%a%", 30)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, tt.status, appError.HTTPStatus)
		})
	}
}
