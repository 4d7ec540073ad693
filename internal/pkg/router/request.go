package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
)

// maxFormBytes bounds url-encoded bodies; login forms are tiny.
const maxFormBytes = 64 << 10

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// ParseForm parses an application/x-www-form-urlencoded body (query values
// are merged in by net/http). Other content types are a format error.
func (r *Request) ParseForm() error {
	if r.Form != nil {
		return nil
	}

	if r.Method == http.MethodPost {
		ct := strings.ToLower(r.Header.Get("Content-Type"))
		if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			return goerror.NewInvalidFormat("Content-Type must be application/x-www-form-urlencoded")
		}
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	}

	if err := r.Request.ParseForm(); err != nil {
		return goerror.NewInvalidFormat("Invalid form body")
	}

	return nil
}

// FormValue returns the trimmed form field, or "" when absent.
func (r *Request) FormValue(key string) string {
	return strings.TrimSpace(r.Request.FormValue(key))
}

// HasForm reports whether the parsed form carries key, even with an empty value.
func (r *Request) HasForm(key string) bool {
	_, ok := r.Form[key]
	return ok
}

// CookieValue returns the value of the named cookie, or "".
func (r *Request) CookieValue(name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// DecodeBody decodes the JSON body into dst.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
