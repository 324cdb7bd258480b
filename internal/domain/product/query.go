package product

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
)

const (
	ParamLimit  = "limit"
	ParamSortBy = "sortby"
	ParamSort   = "sort"

	// SortDescending is the only value of the sort parameter that flips the order.
	SortDescending = "des"

	DefaultSortField = "createdAt"
)

type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// FilterField is an exact-match condition on one document field.
type FilterField struct {
	Field string
	Value any // string, or bool true for the literal "true"
}

type ListQuery struct {
	Filters []FilterField // ordered by field name
	SortBy  string
	Order   SortOrder
	Limit   int64 // 0 means no limit
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NumericTextPattern is the decimal grammar every store treats as a number when
// sorting. The exponent is capped at three digits so SQL numeric casts cannot fail.
const NumericTextPattern = `^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]{1,3})?$`

// MaxNumericTextLen bounds numeric text considered for sorting.
const MaxNumericTextLen = 64

var numericTextRe = regexp.MustCompile(NumericTextPattern)

// request names that differ from the stored field name
var fieldAliases = map[string]string{
	"des": "description",
}

// ParseListQuery turns the query string of GET /products into a ListQuery.
// Every parameter except limit, sortby and sort becomes an equality filter.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		SortBy: DefaultSortField,
		Order:  Descending,
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch k {
		case ParamLimit, ParamSortBy, ParamSort:
			continue
		}

		field, err := normalizeField(k)
		if err != nil {
			return ListQuery{}, err
		}

		raw := values.Get(k)

		var v any = raw
		if raw == "true" {
			v = true
		}

		q.Filters = append(q.Filters, FilterField{Field: field, Value: v})
	}

	if sortBy := values.Get(ParamSortBy); sortBy != "" {
		field, err := normalizeField(sortBy)
		if err != nil {
			return ListQuery{}, err
		}

		q.SortBy = field
		q.Order = Ascending

		if values.Get(ParamSort) == SortDescending {
			q.Order = Descending
		}
	}

	if raw := values.Get(ParamLimit); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return ListQuery{}, fmt.Errorf("%w: limit must be a non-negative integer", ErrInvalidQuery)
		}

		q.Limit = n
	}

	return q, nil
}

// FilterMap returns the filters keyed by field name.
func (q ListQuery) FilterMap() map[string]any {
	m := make(map[string]any, len(q.Filters))
	for _, f := range q.Filters {
		m[f.Field] = f.Value
	}
	return m
}

func normalizeField(name string) (string, error) {
	if !fieldNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: unsupported field %q", ErrInvalidQuery, name)
	}

	if alias, ok := fieldAliases[name]; ok {
		return alias, nil
	}

	return name, nil
}

// NumericSortKey reports the numeric value used to order v, if it has one.
// Numbers, decimal text within float64 range, booleans and times have one;
// everything else sorts lowest.
func NumericSortKey(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		if len(t) > MaxNumericTextLen || !numericTextRe.MatchString(t) {
			return 0, false
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		if tm, ok := v.(interface{ UnixMilli() int64 }); ok {
			return float64(tm.UnixMilli()), true
		}
		return 0, false
	}
}
