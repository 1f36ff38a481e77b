// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/gukkan/internal/library"
)

// fakeRepository records calls and returns canned rows.
type fakeRepository struct {
	mu sync.Mutex

	rows  []library.Row
	err   error
	block bool

	listCalls   int
	searchCalls int
	lastViewer  library.Viewer
	lastPattern string
	lastLimit   int
}

func (repository *fakeRepository) ListRecent(ctx context.Context, limit int) ([]library.Row, error) {
	repository.mu.Lock()
	repository.listCalls++
	repository.lastLimit = limit
	repository.mu.Unlock()
	return repository.respond(ctx)
}

func (repository *fakeRepository) SearchOwned(ctx context.Context, viewer library.Viewer, pattern string, limit int) ([]library.Row, error) {
	repository.mu.Lock()
	repository.searchCalls++
	repository.lastViewer = viewer
	repository.lastPattern = pattern
	repository.lastLimit = limit
	repository.mu.Unlock()
	return repository.respond(ctx)
}

func (repository *fakeRepository) respond(ctx context.Context) ([]library.Row, error) {
	if repository.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return repository.rows, repository.err
}

func (repository *fakeRepository) calls() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return repository.listCalls + repository.searchCalls
}

// matchingRepository filters rows the way ILIKE does: a case-insensitive
// substring match on the title with '\' escapes.
type matchingRepository struct {
	rows []library.Row
}

var likeUnescaper = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`)

func (repository *matchingRepository) ListRecent(context.Context, int) ([]library.Row, error) {
	return repository.rows, nil
}

func (repository *matchingRepository) SearchOwned(_ context.Context, _ library.Viewer, pattern string, limit int) ([]library.Row, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
	needle := strings.ToLower(likeUnescaper.Replace(inner))

	matched := make([]library.Row, 0, len(repository.rows))
	for _, row := range repository.rows {
		if row.Game != nil && strings.Contains(strings.ToLower(row.Game.Title), needle) && len(matched) < limit {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// nopObserver discards measurements.
type nopObserver struct{}

func (nopObserver) ObserveBackend(string, error, time.Duration) {}
func (nopObserver) SkipBackend(string)                          {}

func zeldaRows() []library.Row {
	return []library.Row{
		{Count: 1, Status: "クリア", UpdatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Game: &library.GameRow{ID: "botw", Title: "ゼルダの伝説 ブレス オブ ザ ワイルド", PlatformID: "Switch"}},
		{Count: 1, Status: "積み中", UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Game: nil},
		{Count: 2, Status: "プレイ中", UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Game: &library.GameRow{ID: "totk", Title: "The Legend of Zelda: Tears of the Kingdom", PlatformID: "Switch"}},
	}
}
