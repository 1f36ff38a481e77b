// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/gukkan/internal/platform/database/schema"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
)

// PostgRESTRepository reads library rows through the hosted REST interface.
type PostgRESTRepository struct {
	client *supabase.Client
}

func NewPostgRESTRepository(client *supabase.Client) *PostgRESTRepository {
	return &PostgRESTRepository{client: client}
}

// embedAlias is the name the joined game is returned under.
const embedAlias = "game"

// selectColumns builds the select list with the game embedded through the
// foreign key. inner turns the embed into an inner join so filters on the
// game restrict the parent rows before the limit applies.
func selectColumns(inner bool) string {
	hint := ""
	if inner {
		hint = "!inner"
	}
	return fmt.Sprintf("%s,%s,%s,%s:%s%s(%s)",
		schema.LibraryEntry.Count,
		schema.LibraryEntry.Status,
		schema.LibraryEntry.UpdatedAt,
		embedAlias, schema.LibraryEntry.GameID, hint,
		strings.Join(schema.Game.Columns(), ","),
	)
}

// ListRecent runs with the project key only; row-level security decides what
// an anonymous caller may read.
func (repository *PostgRESTRepository) ListRecent(context context.Context, limit int) ([]Row, error) {
	response, err := repository.client.
		From(schema.LibraryEntry.Table).
		Select(selectColumns(false)).
		Order(schema.LibraryEntry.UpdatedAt, false).
		Limit(limit).
		Execute(context)
	if err != nil {
		return nil, fmt.Errorf("list_recent_failed: %w", err)
	}

	var rows []Row
	if err := response.JSON(&rows); err != nil {
		return nil, fmt.Errorf("list_recent_failed: %w", err)
	}
	return rows, nil
}

// SearchOwned runs as the viewer so row-level security applies on top of the
// explicit owner filter.
func (repository *PostgRESTRepository) SearchOwned(context context.Context, viewer Viewer, pattern string, limit int) ([]Row, error) {
	response, err := repository.client.
		From(schema.LibraryEntry.Table).
		Select(selectColumns(true)).
		Eq(schema.LibraryEntry.UserID, viewer.UserID).
		ILike(embedAlias+"."+schema.Game.Title, pattern).
		Order(schema.LibraryEntry.UpdatedAt, false).
		Limit(limit).
		WithToken(viewer.AccessToken).
		Execute(context)
	if err != nil {
		return nil, fmt.Errorf("search_owned_failed: %w", err)
	}

	var rows []Row
	if err := response.JSON(&rows); err != nil {
		return nil, fmt.Errorf("search_owned_failed: %w", err)
	}
	return rows, nil
}
