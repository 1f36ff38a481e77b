// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package login serves the sign-in and sign-out screens.

# Flow

  - GET  /login  : Renders the form.
  - POST /login  : Signs in with the pseudo-email, writes the session cookies
    and redirects home. Any failure re-renders the form with one generic
    message and status 401. Past the per-client budget the form comes back
    with status 429 instead.
  - POST /logout : Ends the session on the backend, revokes the token, clears
    the cookies and redirects to the form.
*/
package login

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/gukkan/internal/platform/request"
	"github.com/taibuivan/gukkan/internal/platform/respond"
	"github.com/taibuivan/gukkan/internal/session"
	"github.com/taibuivan/gukkan/internal/web"
)

// Renderer writes a page.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any)
}

type Handler struct {
	service  *Service
	codec    *session.Codec
	renderer Renderer
}

func NewHandler(service *Service, codec *session.Codec, renderer Renderer) *Handler {
	return &Handler{service: service, codec: codec, renderer: renderer}
}

// RegisterRoutes mounts the login and logout routes. limit guards the form submit.
func (handler *Handler) RegisterRoutes(router chi.Router, limit func(http.Handler) http.Handler) {
	router.Get(constants.RouteLogin, handler.form)
	router.With(limit).Post(constants.RouteLogin, handler.submit)
	router.Post(constants.RouteLogout, handler.logout)
}

func (handler *Handler) form(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Render(writer, request, http.StatusOK, web.PageLogin, web.Login{})
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	fields, err := requestutil.Form(writer, request, FieldUserID, FieldPassword)
	if err != nil {
		handler.rejected(writer, request)
		return
	}

	issued, err := handler.service.SignIn(request.Context(), fields[FieldUserID], fields[FieldPassword])
	if err != nil {
		handler.rejected(writer, request)
		return
	}

	if err := handler.codec.Write(session.NewHTTPCookieStore(writer, request), issued); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "session_cookie_write_failed", slog.Any("error", err))
		handler.rejected(writer, request)
		return
	}

	respond.Redirect(writer, request, constants.RouteHome)
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	store := session.NewHTTPCookieStore(writer, request)

	if current, err := handler.codec.Decode(store.GetAll()); err == nil {
		if err := handler.service.SignOut(request.Context(), current); err != nil {
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "logout_incomplete", slog.Any("error", err))
		}
	}

	handler.codec.Clear(store)
	respond.Redirect(writer, request, constants.RouteLogin)
}

// Throttled re-renders the form when the submit budget for the client is
// spent. The limiter has already set Retry-After.
func (handler *Handler) Throttled(writer http.ResponseWriter, request *http.Request, _ int) {
	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "login_throttled")
	handler.renderer.Render(writer, request, http.StatusTooManyRequests, web.PageLogin, web.Login{Throttled: true})
}

// rejected renders the single failure response.
func (handler *Handler) rejected(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Render(writer, request, http.StatusUnauthorized, web.PageLogin, web.Login{Failed: true})
}
