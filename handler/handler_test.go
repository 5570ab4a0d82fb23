package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/handler"
	"github.com/dmitrymomot/biportal/pkg/binder"
)

type greetRequest struct {
	Name string `query:"name"`
	Loud bool   `query:"loud"`
}

var errTeapot = errors.New("portal.teapot")

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestWrap_JSON(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(_ handler.Context, req greetRequest) handler.Response {
		return handler.JSON(map[string]any{"hello": req.Name, "loud": req.Loud}, handler.WithStatus(http.StatusAccepted))
	}, handler.WithBinders[handler.Context, greetRequest](binder.Query()))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/?name=ana&loud=1", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"ana","loud":true}`, rec.Body.String())
}

func TestWrap_BindError(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(_ handler.Context, _ greetRequest) handler.Response {
		t.Fatal("handler must not run")
		return nil
	}, handler.WithBinders[handler.Context, greetRequest](binder.Query()))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/?loud=perhaps", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request.invalid", decodeError(t, rec))
}

func TestWrap_NilResponse(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec))
}

func TestWrap_Decorators(t *testing.T) {
	t.Parallel()

	var order []string
	trace := func(name string) handler.Decorator[handler.Context, struct{}] {
		return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
		order = append(order, "handler")
		return handler.Empty()
	}, handler.WithDecorators(trace("outer"), trace("inner")))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestErrorHandler_Mapping(t *testing.T) {
	t.Parallel()

	onError := handler.NewErrorHandler[handler.Context](nil, handler.MapErrors(map[error]int{
		errTeapot: http.StatusTeapot,
	}))

	tests := []struct {
		name string
		err  error
		code int
		key  string
	}{
		{"mapped sentinel", errors.Join(errorString("lookup failed"), errTeapot), http.StatusTeapot, "portal.teapot"},
		{"http error", handler.ErrNotFound, http.StatusNotFound, "request.not_found"},
		{"unknown", errorString("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			onError(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil)), tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.key, decodeError(t, rec))
		})
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }

func TestTemplAndRedirect(t *testing.T) {
	t.Parallel()

	page := templ.Raw("<p>blocked</p>")
	rec := httptest.NewRecorder()
	require.NoError(t, handler.TemplWithStatus(http.StatusForbidden, page).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<p>blocked</p>", rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, handler.Redirect("/login").Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
