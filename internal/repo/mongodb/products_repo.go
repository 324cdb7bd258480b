package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/babycare/storefront/internal/db"
	"github.com/babycare/storefront/internal/domain/product"
	"github.com/babycare/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// sortKeyField holds the numeric projection of the sort field during a list.
const sortKeyField = "__sortKey"

type productDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Images        []string           `bson:"images"`
	Title         string             `bson:"title"`
	Price         string             `bson:"price"`
	Rating        string             `bson:"rating"`
	Category      string             `bson:"category"`
	Description   string             `bson:"description"`
	FlashSale     bool               `bson:"flashSale"`
	FlashSaleDate string             `bson:"flashSaleDate"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func newProductDoc(p product.Product) (productDoc, error) {
	id, err := primitive.ObjectIDFromHex(p.ID)

	if err != nil {
		return productDoc{}, product.ErrInvalidID
	}

	return productDoc{
		ID:            id,
		Images:        p.Images,
		Title:         p.Title,
		Price:         p.Price,
		Rating:        p.Rating,
		Category:      p.Category,
		Description:   p.Description,
		FlashSale:     p.FlashSale,
		FlashSaleDate: p.FlashSaleDate,
		CreatedAt:     p.CreatedAt,
	}, nil
}

func (d productDoc) toDomain() product.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}

	return product.Product{
		ID:            d.ID.Hex(),
		Images:        images,
		Title:         d.Title,
		Price:         d.Price,
		Rating:        d.Rating,
		Category:      d.Category,
		Description:   d.Description,
		FlashSale:     d.FlashSale,
		FlashSaleDate: d.FlashSaleDate,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type ProductsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewProductsRepo(database *mongo.Database, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{
		coll: database.Collection(db.ProductsCollection),
		prom: prom,
	}
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) error {
	doc, err := newProductDoc(p)

	if err != nil {
		return err
	}

	err = r.prom.ObserveDB("products.create", func() error {
		_, e := r.coll.InsertOne(ctx, doc)
		return e
	})

	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return product.Product{}, product.ErrInvalidID
	}

	var doc productDoc

	err = r.prom.ObserveDB("products.get", func() error {
		return r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, fmt.Errorf("find product: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *ProductsRepo) List(ctx context.Context, q product.ListQuery) ([]product.Product, error) {
	pipeline := listPipeline(q)

	docs := make([]productDoc, 0)

	err := r.prom.ObserveDB("products.list", func() error {
		cur, e := r.coll.Aggregate(ctx, pipeline)

		if e != nil {
			return e
		}

		return cur.All(ctx, &docs)
	})

	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}

	return out, nil
}

func (r *ProductsRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// listPipeline matches the filters, then sorts on a numeric projection of the
// sort field so prices and ratings stored as text order by value.
func listPipeline(q product.ListQuery) mongo.Pipeline {
	match := bson.D{}

	for _, f := range q.Filters {
		v := f.Value

		if f.Field == "_id" {
			if s, ok := v.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					v = oid
				}
			}
		}

		match = append(match, bson.E{Key: f.Field, Value: v})
	}

	dir := int(q.Order)

	sortSpec := bson.D{
		{Key: sortKeyField, Value: dir},
		{Key: q.SortBy, Value: dir},
	}
	if q.SortBy != "_id" {
		sortSpec = append(sortSpec, bson.E{Key: "_id", Value: dir})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.D{{Key: sortKeyField, Value: bson.D{{Key: "$convert", Value: bson.D{
			{Key: "input", Value: "$" + q.SortBy},
			{Key: "to", Value: "double"},
			{Key: "onError", Value: nil},
			{Key: "onNull", Value: nil},
		}}}}}}},
		{{Key: "$sort", Value: sortSpec}},
	}

	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}

	return append(pipeline, bson.D{{Key: "$project", Value: bson.D{{Key: sortKeyField, Value: 0}}}})
}
