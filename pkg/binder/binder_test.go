package binder_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biportal/pkg/binder"
)

type request struct {
	Route   string        `query:"route"`
	Wait    bool          `query:"wait"`
	Timeout time.Duration `query:"timeout"`
	Limit   *int          `query:"limit"`
	Key     string        `path:"key"`
	Skipped string        `query:"-"`
	hidden  string        `query:"hidden"`
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/access?route=dashboards&wait&timeout=2s&limit=5&Skipped=x&hidden=y", nil)
	var req request
	require.NoError(t, binder.Query()(r, &req))

	assert.Equal(t, "dashboards", req.Route)
	assert.True(t, req.Wait)
	assert.Equal(t, 2*time.Second, req.Timeout)
	require.NotNil(t, req.Limit)
	assert.Equal(t, 5, *req.Limit)
	assert.Empty(t, req.Skipped)
	assert.Empty(t, req.hidden)
}

func TestQuery_Errors(t *testing.T) {
	t.Parallel()

	var req request
	err := binder.Query()(httptest.NewRequest(http.MethodGet, "/?wait=maybe", nil), &req)
	assert.ErrorIs(t, err, binder.ErrInvalidQuery)

	err = binder.Query()(httptest.NewRequest(http.MethodGet, "/", nil), req)
	assert.ErrorIs(t, err, binder.ErrInvalidTarget)
}

func TestPath(t *testing.T) {
	t.Parallel()

	extract := func(_ *http.Request, name string) string {
		if name == "key" {
			return "export_pdf"
		}
		return ""
	}
	var req request
	require.NoError(t, binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &req))
	assert.Equal(t, "export_pdf", req.Key)

	err := binder.Path(nil)(httptest.NewRequest(http.MethodGet, "/", nil), &req)
	assert.ErrorIs(t, err, binder.ErrInvalidPath)
}
