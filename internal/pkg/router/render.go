package router

import (
	"net/http"

	"github.com/a-h/templ"
)

// Renderer is a handler result that writes itself instead of going through
// the default JSON envelope.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// JSON writes Body as-is with Status (200 when zero).
type JSON struct {
	Status int
	Body   any
}

func (j JSON) Render(w http.ResponseWriter, _ *http.Request) error {
	status := j.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, j.Body, status)
	return nil
}

// HTML renders a templ component with Status (200 when zero).
type HTML struct {
	Status    int
	Component templ.Component
}

func (h HTML) Render(w http.ResponseWriter, r *http.Request) error {
	status := h.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	return h.Component.Render(r.Context(), w)
}

// Redirect sends the client to URL. Status defaults to 303 See Other, which
// turns a form POST into a GET.
type Redirect struct {
	URL    string
	Status int
}

func (rd Redirect) Render(w http.ResponseWriter, r *http.Request) error {
	status := rd.Status
	if status < 300 || status >= 400 {
		status = http.StatusSeeOther
	}

	http.Redirect(w, r, rd.URL, status)
	return nil
}

// WithCookies sets cookies before delegating to the wrapped Renderer.
type WithCookies struct {
	Renderer
	Cookies []*http.Cookie
}

func (c WithCookies) Render(w http.ResponseWriter, r *http.Request) error {
	for _, ck := range c.Cookies {
		http.SetCookie(w, ck)
	}
	return c.Renderer.Render(w, r)
}
