// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	requestutil "github.com/taibuivan/gukkan/internal/platform/request"
	"github.com/taibuivan/gukkan/internal/platform/respond"
	"github.com/taibuivan/gukkan/internal/web"
	"github.com/taibuivan/gukkan/pkg/slice"
)

// Renderer writes a page.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any)
}

type Handler struct {
	service  *Service
	renderer Renderer
}

func NewHandler(service *Service, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// RegisterRoutes mounts the list screen publicly and the search screen behind gate.
func (handler *Handler) RegisterRoutes(router chi.Router, gate func(http.Handler) http.Handler) {
	router.Get(constants.RouteHome, handler.list)
	router.With(gate).Get(constants.RouteSearch, handler.search)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	result := handler.service.List(request.Context())

	handler.renderer.Render(writer, request, http.StatusOK, web.PageGrid, web.Grid{
		Title:    web.ListTitle,
		Subtitle: web.ListSubtitle,
		Failed:   result.State == StateError,
		Empty:    web.ListEmpty,
		Cards:    toCards(result.Items),
	})
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Redirect(writer, request, constants.RouteLogin)
		return
	}

	viewer := Viewer{UserID: identity.UserID, AccessToken: identity.AccessToken}
	result := handler.service.Search(request.Context(), viewer, requestutil.Query(request, "q"))

	empty := web.SearchPrompt
	if result.Searched() {
		empty = web.SearchNoResults
	}

	handler.renderer.Render(writer, request, http.StatusOK, web.PageGrid, web.Grid{
		Title:      web.SearchTitle,
		Subtitle:   web.SearchSubtitle,
		SearchForm: true,
		Query:      result.Query,
		Failed:     result.State == StateError,
		Empty:      empty,
		Cards:      toCards(result.Items),
	})
}

func toCards(items []GameListItem) []web.Card {
	return slice.Map(items, func(item GameListItem) web.Card {
		return web.Card{
			ID:       item.ID,
			Title:    item.Title,
			Platform: item.Platform.Name(),
			Count:    item.Count,
			Status:   item.Status.Label(),
			Tone:     item.Status.Tone().String(),
		}
	})
}
