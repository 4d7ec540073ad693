package inbound

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/shandysiswandi/smsotp/internal/pkg/i18n"
)

type pageName string

const (
	pageLogin   pageName = "login"
	pageOTP     pageName = "otp"
	pageMessage pageName = "message"
)

const pageStyle = `body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0}
main{max-width:24rem;margin:4rem auto;background:#fff;padding:2rem;border-radius:8px;box-shadow:0 1px 3px rgba(0,0,0,.15)}
label{display:block;margin-top:1rem}
input{width:100%;padding:.5rem;box-sizing:border-box}
button{margin-top:1.5rem;width:100%;padding:.6rem}
.error{color:#b00020}
.notice{color:#8a6d00}`

type pageData struct {
	HTMLLang string
	Title    string
	Error    string
	Notice   string
	Message  string
	Action   string
	Username string
	// T is the localizer of the request.
	T func(id string) string
}

// pages renders the browser screens as templ components sharing one layout.
type pages struct {
	bodies map[pageName]func(pageData) templ.Component
}

func newPages() *pages {
	return &pages{bodies: map[pageName]func(pageData) templ.Component{
		pageLogin:   loginBody,
		pageOTP:     otpBody,
		pageMessage: messageBody,
	}}
}

// component renders name inside the layout. Output is buffered so a failed
// render never leaves half a page on the wire.
func (p *pages) component(name pageName, l i18n.Localizer, data pageData) templ.Component {
	data.T = l.T
	if data.HTMLLang == "" {
		data.HTMLLang = "en"
	}
	body := p.bodies[name](data)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := layout(data).Render(templ.WithChildren(ctx, body), &buf); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

func layout(d pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		if children == nil {
			children = templ.NopComponent
		}
		ctx = templ.ClearChildren(ctx)

		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", d.HTMLLang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="robots" content="noindex"><title>`)
		h.text(d.Title)
		h.raw(`</title><style>` + pageStyle + `</style></head><body><main><h1>`)
		h.text(d.Title)
		h.raw(`</h1>`)
		if d.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(d.Error)
			h.raw(`</p>`)
		}
		h.component(ctx, children)
		h.raw(`</main></body></html>`)

		return h.err
	})
}

func loginBody(d pageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.form(d.Action)
		h.label("username", d.T("username_label"))
		h.raw(`<input id="username" name="username"`)
		h.attr("value", d.Username)
		h.raw(` autocomplete="username" required autofocus>`)
		h.label("password", d.T("password_label"))
		h.raw(`<input id="password" name="password" type="password" autocomplete="current-password" required>`)
		h.submit(d.T("sign_in"))
		return h.err
	})
}

func otpBody(d pageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<p>`)
		h.text(d.T("otp_prompt"))
		h.raw(`</p>`)
		if d.Notice != "" {
			h.raw(`<p class="notice">`)
			h.text(d.Notice)
			h.raw(`</p>`)
		}
		h.form(d.Action)
		h.label("code", d.T("otp_label"))
		h.raw(`<input id="code" name="code" inputmode="numeric" pattern="[0-9]*" autocomplete="one-time-code" required autofocus>`)
		h.submit(d.T("otp_submit"))
		return h.err
	})
}

func messageBody(d pageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		if d.Message != "" {
			h.raw(`<p>`)
			h.text(d.Message)
			h.raw(`</p>`)
		}
		if d.Action != "" {
			h.raw(`<p><a`)
			h.attr("href", string(templ.URL(d.Action)))
			h.raw(`>`)
			h.text(d.T("start_over"))
			h.raw(`</a></p>`)
		}
		return h.err
	})
}

// html writes markup and keeps the first error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func (h *html) form(action string) {
	h.raw(`<form method="post"`)
	h.attr("action", string(templ.URL(action)))
	h.raw(`>`)
}

func (h *html) label(field, text string) {
	h.raw(`<label`)
	h.attr("for", field)
	h.raw(`>`)
	h.text(text)
	h.raw(`</label>`)
}

func (h *html) submit(text string) {
	h.raw(`<button type="submit">`)
	h.text(text)
	h.raw(`</button></form>`)
}

// htmlLang picks the primary tag of an Accept-Language header.
func htmlLang(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first, _, _ = strings.Cut(first, ";")
	first = strings.TrimSpace(first)
	if first == "" || first == "*" {
		return "en"
	}
	return first
}
