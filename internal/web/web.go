// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package web renders the server-side screens.

Templates are embedded in the binary and parsed once at startup. Each page is
executed into a buffer before anything is written, so a template failure
becomes a clean 500 instead of a half-written page.
*/
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/respond"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageGrid  = "grid"
	PageLogin = "login"
)

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page with the shared layout.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"toneClass":  ToneClass,
		"detailPath": DetailPath,
		"copy":       copyText,
		"routes":     routes,
	}

	renderer := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageGrid, PageLogin} {
		parsed, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", page, err)
		}
		renderer.pages[page] = parsed
	}

	return renderer, nil
}

// Render writes page with data and the given status.
func (renderer *Renderer) Render(writer http.ResponseWriter, request *http.Request, status int, page string, data any) {
	body, err := renderer.Execute(page, data)
	if err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "template_render_failed",
			slog.String("page", page),
			slog.Any("error", err),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	respond.HTML(writer, status, body)
}

// Execute renders page into memory.
func (renderer *Renderer) Execute(page string, data any) ([]byte, error) {
	parsed, ok := renderer.pages[page]
	if !ok {
		return nil, fmt.Errorf("web: unknown page %q", page)
	}

	var buffer bytes.Buffer
	if err := parsed.ExecuteTemplate(&buffer, "layout.html", data); err != nil {
		return nil, fmt.Errorf("web: execute %s: %w", page, err)
	}
	return buffer.Bytes(), nil
}

// DetailPath is the per-game detail route a card links to.
func DetailPath(id string) string {
	return "/games/" + url.PathEscape(id) + "/detail"
}

// copyText exposes the screen copy to templates by key.
func copyText(key string) string {
	if text, ok := copyByKey[key]; ok {
		return text
	}
	return key
}

var copyByKey = map[string]string{
	"site_name":          SiteName,
	"site_description":   SiteDescription,
	"my_page":            MyPageLabel,
	"search_placeholder": SearchPlaceholder,
	"search_button":      SearchButton,
	"load_failed":        LoadFailed,
	"count_label":        CountLabel,
	"login_title":        LoginTitle,
	"login_user_id":      LoginUserIDLabel,
	"login_password":     LoginPasswordLabel,
	"login_button":       LoginButton,
	"login_pending":      LoginPending,
	"login_failed":       LoginFailed,
	"login_throttled":    LoginThrottled,
}

func routes() map[string]string {
	return map[string]string{
		"home":   constants.RouteHome,
		"login":  constants.RouteLogin,
		"logout": constants.RouteLogout,
		"search": constants.RouteSearch,
	}
}
