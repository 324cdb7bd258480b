package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/babycare/storefront/internal/domain/product"
	"github.com/babycare/storefront/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductsRepo stores each product as a JSONB document keyed by its ObjectID hex.
type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) error {
	doc, err := json.Marshal(p)

	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	err = r.prom.ObserveDB("products.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO products (id, doc, created_at) VALUES ($1, $2::jsonb, $3)`,
			p.ID, string(doc), p.CreatedAt,
		)
		return e
	})

	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	if !product.ValidID(id) {
		return product.Product{}, product.ErrInvalidID
	}

	var raw []byte

	err := r.prom.ObserveDB("products.get", func() error {
		return r.pool.QueryRow(ctx, `SELECT doc FROM products WHERE id = $1`, id).Scan(&raw)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, fmt.Errorf("find product: %w", err)
	}

	return decodeProduct(raw)
}

func (r *ProductsRepo) List(ctx context.Context, q product.ListQuery) ([]product.Product, error) {
	query, args, err := buildListQuery(q)

	if err != nil {
		return nil, err
	}

	output := make([]product.Product, 0)

	err = r.prom.ObserveDB("products.list", func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var raw []byte

			e = rows.Scan(&raw)

			if e != nil {
				return e
			}

			p, decodeErr := decodeProduct(raw)

			if decodeErr != nil {
				return decodeErr
			}

			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return output, nil
}

func (r *ProductsRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// largest finite float64; keys beyond it sort as non-numeric, like the other stores
const maxDoubleText = "1.7976931348623157e308"

func buildListQuery(q product.ListQuery) (string, []interface{}, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	// jsonb containment keeps document-store semantics: scalars compare equal,
	// and an array field matches when it holds the value
	for _, f := range q.Filters {
		val, err := json.Marshal(f.Value)

		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}

		conds = append(conds, fmt.Sprintf("doc -> $%d::text @> $%d::jsonb", argsPosition, argsPosition+1))
		args = append(args, f.Field, string(val))
		argsPosition += 2
	}

	query := `SELECT doc FROM products`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	dir := q.Order.String()

	// missing or non-numeric keys sort lowest in either direction
	nulls := "NULLS FIRST"
	if q.Order == product.Descending {
		nulls = "NULLS LAST"
	}

	if q.SortBy == product.DefaultSortField {
		query += fmt.Sprintf(" ORDER BY created_at %s, id %s", dir, dir)
	} else {
		field := fmt.Sprintf("$%d::text", argsPosition)
		args = append(args, q.SortBy)
		argsPosition++

		// the pattern caps exponents at three digits, so ::numeric never raises;
		// the magnitude check keeps the key inside float64 range
		query += fmt.Sprintf(` ORDER BY (CASE
			WHEN jsonb_typeof(doc -> %[1]s) = 'boolean' THEN CASE WHEN (doc ->> %[1]s)::boolean THEN 1 ELSE 0 END
			WHEN jsonb_typeof(doc -> %[1]s) = 'number'
				OR (jsonb_typeof(doc -> %[1]s) = 'string' AND length(doc ->> %[1]s) <= %[6]d AND (doc ->> %[1]s) ~ '%[2]s')
			THEN CASE WHEN abs((doc ->> %[1]s)::numeric) <= %[5]s THEN (doc ->> %[1]s)::numeric END
		END) %[3]s %[4]s, doc -> %[1]s %[3]s, id %[3]s`,
			field, product.NumericTextPattern, dir, nulls, maxDoubleText, product.MaxNumericTextLen)
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argsPosition)
		args = append(args, q.Limit)
	}

	return query, args, nil
}

func decodeProduct(raw []byte) (product.Product, error) {
	var p product.Product

	err := json.Unmarshal(raw, &p)

	if err != nil {
		return product.Product{}, fmt.Errorf("decode product: %w", err)
	}

	if p.Images == nil {
		p.Images = []string{}
	}

	return p, nil
}
