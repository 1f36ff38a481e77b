// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/pkg/searchterm"
)

// Backend operation names, used as metric labels.
const (
	OperationListRecent  = "list_recent"
	OperationSearchOwned = "search_owned"
)

// # Screen State

// State is the exclusive outcome of one screen load.
type State int

const (
	// StatePopulated has at least one item.
	StatePopulated State = iota
	// StateEmpty has no items and no error.
	StateEmpty
	// StateError means the query failed; no items are shown.
	StateError
)

func (state State) String() string {
	switch state {
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	default:
		return "error"
	}
}

// Result is what a screen renders.
type Result struct {
	State State
	Items []GameListItem

	// Query is the trimmed search term; empty on the list screen and
	// when nothing was searched.
	Query string
}

// NewResult derives the screen state. An error always wins over items.
func NewResult(items []GameListItem, err error) Result {
	switch {
	case err != nil:
		return Result{State: StateError}
	case len(items) == 0:
		return Result{State: StateEmpty, Items: []GameListItem{}}
	default:
		return Result{State: StatePopulated, Items: items}
	}
}

// Searched reports whether a non-empty query was run.
func (result Result) Searched() bool { return result.Query != "" }

// # Service

// Observer receives backend call measurements.
type Observer interface {
	ObserveBackend(operation string, err error, duration time.Duration)
	SkipBackend(operation string)
}

// Service runs the library queries behind the screens.
type Service struct {
	repo     Repository
	timeout  time.Duration
	observer Observer
}

// NewService wires a repository. Every backend call is bounded by timeout.
func NewService(repo Repository, timeout time.Duration, observer Observer) *Service {
	return &Service{
		repo:     repo,
		timeout:  timeout,
		observer: observer,
	}
}

// List loads the most recently updated entries.
func (service *Service) List(ctx context.Context) Result {
	rows, err := service.call(ctx, OperationListRecent, func(ctx context.Context) ([]Row, error) {
		return service.repo.ListRecent(ctx, constants.LibraryRowLimit)
	})
	return NewResult(Project(rows), err)
}

// Search loads the viewer's entries whose title contains rawQuery.
//
// A query with no visible characters returns the empty state without
// touching the backend.
func (service *Service) Search(ctx context.Context, viewer Viewer, rawQuery string) Result {
	term := searchterm.Clean(rawQuery)
	if term == "" {
		service.observer.SkipBackend(OperationSearchOwned)
		return NewResult(nil, nil)
	}

	rows, err := service.call(ctx, OperationSearchOwned, func(ctx context.Context) ([]Row, error) {
		return service.repo.SearchOwned(ctx, viewer, searchterm.Contains(term), constants.LibraryRowLimit)
	})

	result := NewResult(Project(rows), err)
	result.Query = term
	return result
}

// call runs one bounded repository call, records it and logs failures.
func (service *Service) call(parent context.Context, operation string, run func(context.Context) ([]Row, error)) ([]Row, error) {
	ctx, cancel := context.WithTimeout(parent, service.timeout)
	defer cancel()

	start := time.Now()
	rows, err := run(ctx)
	service.observer.ObserveBackend(operation, err, time.Since(start))

	if err != nil {
		ctxutil.GetLogger(parent).ErrorContext(parent, "library_query_failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return nil, err
	}

	return rows, nil
}
