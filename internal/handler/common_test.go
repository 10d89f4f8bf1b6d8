package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryCtx(t *testing.T, rawQuery string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		page, limit int
		total       int64
		wantPages   int
		wantNext    bool
		wantPrev    bool
	}{
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle", 2, 10, 25, 3, true, true},
		{"last", 3, 10, 25, 3, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty", 1, 10, 0, 0, false, false},
		{"past the end", 5, 10, 25, 3, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPagination(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.wantPages, p.TotalPages)
			assert.Equal(t, tc.wantNext, p.HasNextPage)
			assert.Equal(t, tc.wantPrev, p.HasPreviousPage)
			assert.Equal(t, tc.total, p.Total)
		})
	}
}

func TestParsePagination(t *testing.T) {
	t.Parallel()

	page, limit := parsePagination(queryCtx(t, ""))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = parsePagination(queryCtx(t, "page=3&limit=25"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	page, limit = parsePagination(queryCtx(t, "page=-1&limit=0"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	_, limit = parsePagination(queryCtx(t, "limit=500"))
	assert.Equal(t, 100, limit)
}

func TestParseSearch(t *testing.T) {
	t.Parallel()

	q, limit, ok := parseSearch(queryCtx(t, "q=jazz"))
	require.True(t, ok)
	assert.Equal(t, "jazz", q)
	assert.Equal(t, 10, limit)

	_, _, ok = parseSearch(queryCtx(t, ""))
	assert.False(t, ok)

	_, limit, ok = parseSearch(queryCtx(t, "q=jazz&limit=200"))
	require.True(t, ok)
	assert.Equal(t, 50, limit)
}

func TestGetUserID(t *testing.T) {
	t.Parallel()
	e := echo.New()

	newCtx := func(v any) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if v != nil {
			c.Set("user_id", v)
		}
		return c
	}

	for _, v := range []any{uint64(42), int(42), int64(42), float64(42), "42"} {
		id, err := getUserID(newCtx(v))
		require.NoError(t, err, "value %T", v)
		assert.Equal(t, uint64(42), id)
	}

	_, err := getUserID(newCtx(nil))
	assert.Error(t, err)

	_, err = getUserID(newCtx("not-a-number"))
	assert.Error(t, err)
}

func TestParseEventDate(t *testing.T) {
	t.Parallel()

	got, err := parseEventDate("2026-10-01T20:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())

	got, err = parseEventDate("2026-10-01 20:00:00")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Hour())

	_, err = parseEventDate("next friday")
	assert.Error(t, err)
}
