package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/babycare/storefront/internal/domain/product"
)

type ProductsRepo struct {
	mu    sync.RWMutex
	items map[string]product.Product
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[string]product.Product),
	}
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) error {
	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return nil
}

func (r *ProductsRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	if !product.ValidID(id) {
		return product.Product{}, product.ErrInvalidID
	}

	r.mu.RLock()
	p, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return product.Product{}, product.ErrNotFound
	}

	return p, nil
}

func (r *ProductsRepo) List(_ context.Context, q product.ListQuery) ([]product.Product, error) {
	r.mu.RLock()

	type row struct {
		p   product.Product
		doc map[string]any
	}

	rows := make([]row, 0, len(r.items))

	for _, p := range r.items {
		doc := p.Fields()

		if matches(doc, q.Filters) {
			rows = append(rows, row{p: p, doc: doc})
		}
	}

	r.mu.RUnlock()

	slices.SortFunc(rows, func(a, b row) int {
		c := compareValues(a.doc[q.SortBy], b.doc[q.SortBy])

		if c == 0 {
			c = compareValues(a.p.ID, b.p.ID)
		}

		return c * int(q.Order)
	})

	if q.Limit > 0 && int64(len(rows)) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]product.Product, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.p)
	}

	return out, nil
}

func (r *ProductsRepo) Ping(context.Context) error {
	return nil
}

// matches applies equality filters the way a document store does:
// an array field matches when any element equals the value.
func matches(doc map[string]any, filters []product.FilterField) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]

		if !ok {
			return false
		}

		switch field := v.(type) {
		case []string:
			want, isString := f.Value.(string)

			if !isString || !slices.Contains(field, want) {
				return false
			}
		case string, bool:
			if field != f.Value {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// compareValues orders numeric keys by value, with values lacking one sorting lowest
// and falling back to text comparison among themselves.
func compareValues(a, b any) int {
	na, okA := product.NumericSortKey(a)
	nb, okB := product.NumericSortKey(b)

	switch {
	case okA && okB:
		return cmpFloat(na, nb)
	case okA:
		return 1
	case okB:
		return -1
	}

	sa, okA := a.(string)
	sb, okB := b.(string)

	switch {
	case okA && okB:
		if sa < sb {
			return -1
		}
		if sa > sb {
			return 1
		}
		return 0
	case okA:
		return 1
	case okB:
		return -1
	}

	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
