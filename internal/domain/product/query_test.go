package product

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValues(t *testing.T, raw string) url.Values {
	t.Helper()

	v, err := url.ParseQuery(raw)
	require.NoError(t, err)

	return v
}

func TestParseListQuery_Defaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{})
	require.NoError(t, err)

	assert.Empty(t, q.Filters)
	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, Descending, q.Order)
	assert.Equal(t, int64(0), q.Limit)
}

func TestParseListQuery_FiltersExcludeControlParams(t *testing.T) {
	q, err := ParseListQuery(mustValues(t, "limit=2&sortby=price&sort=des&category=toys&flashSale=true&title=Rattle"))
	require.NoError(t, err)

	assert.Equal(t, []FilterField{
		{Field: "category", Value: "toys"},
		{Field: "flashSale", Value: true},
		{Field: "title", Value: "Rattle"},
	}, q.Filters)

	assert.Equal(t, "price", q.SortBy)
	assert.Equal(t, Descending, q.Order)
	assert.Equal(t, int64(2), q.Limit)
}

func TestParseListQuery_OnlyLiteralTrueIsCoerced(t *testing.T) {
	q, err := ParseListQuery(mustValues(t, "flashSale=false&featured=TRUE&new=true"))
	require.NoError(t, err)

	m := q.FilterMap()
	assert.Equal(t, "false", m["flashSale"])
	assert.Equal(t, "TRUE", m["featured"])
	assert.Equal(t, true, m["new"])
}

func TestParseListQuery_SortAscendingUnlessDes(t *testing.T) {
	for _, raw := range []string{"sortby=rating", "sortby=rating&sort=asc", "sortby=rating&sort=desc"} {
		q, err := ParseListQuery(mustValues(t, raw))
		require.NoError(t, err)

		assert.Equal(t, "rating", q.SortBy, raw)
		assert.Equal(t, Ascending, q.Order, raw)
	}
}

func TestParseListQuery_SortWithoutSortByKeepsDefault(t *testing.T) {
	q, err := ParseListQuery(mustValues(t, "sort=des"))
	require.NoError(t, err)

	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, Descending, q.Order)
}

func TestParseListQuery_DesAlias(t *testing.T) {
	q, err := ParseListQuery(mustValues(t, "des=soft&sortby=des"))
	require.NoError(t, err)

	assert.Equal(t, "description", q.SortBy)
	assert.Equal(t, []FilterField{{Field: "description", Value: "soft"}}, q.Filters)
}

func TestParseListQuery_FirstValueWins(t *testing.T) {
	q, err := ParseListQuery(mustValues(t, "category=toys&category=food"))
	require.NoError(t, err)

	assert.Equal(t, "toys", q.FilterMap()["category"])
}

func TestParseListQuery_Rejects(t *testing.T) {
	tests := []string{
		"limit=abc",
		"limit=-1",
		"limit=2.5",
		"$where=1",
		"price.gt=5",
		"sortby=$natural",
		"sortby=a b",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseListQuery(mustValues(t, raw))
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestNumericSortKey(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{name: "numeric text", in: "19.99", want: 19.99, wantOK: true},
		{name: "plain text", in: "toys", wantOK: false},
		{name: "nan text", in: "NaN", wantOK: false},
		{name: "exponent text", in: "2.5e3", want: 2500, wantOK: true},
		{name: "overflowing text", in: "1e400", wantOK: false},
		{name: "long exponent", in: "1e0005", wantOK: false},
		{name: "hex float text", in: "0x1p3", wantOK: false},
		{name: "padded text", in: " 12 ", wantOK: false},
		{name: "float", in: 4.5, want: 4.5, wantOK: true},
		{name: "bool", in: true, want: 1, wantOK: true},
		{name: "time", in: now, want: float64(now.UnixMilli()), wantOK: true},
		{name: "nil", in: nil, wantOK: false},
		{name: "slice", in: []string{"a"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NumericSortKey(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
