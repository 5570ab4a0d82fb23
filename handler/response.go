package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
)

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// JSON renders v as the response body.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSONError renders err as {"error": key}. Errors that are not an HTTPError
// become internal_error with status 500.
func JSONError(err error, opts ...JSONOption) Response {
	he := ErrInternal
	errors.As(err, &he)
	r := &jsonResponse{status: he.Code, body: ErrorBody{Error: he.Key}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type templResponse struct {
	status    int
	component templ.Component
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	return t.component.Render(r.Context(), w)
}

// Templ renders an HTML component with status 200.
func Templ(c templ.Component) Response {
	return templResponse{status: http.StatusOK, component: c}
}

// TemplWithStatus renders an HTML component with a custom status.
func TemplWithStatus(status int, c templ.Component) Response {
	return templResponse{status: status, component: c}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect responds with 303 See Other.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}
