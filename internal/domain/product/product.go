package product

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Price and rating are kept as text, the way the
// storefront has always stored them.
type Product struct {
	ID            string    `json:"_id"`
	Images        []string  `json:"images"`
	Title         string    `json:"title"`
	Price         string    `json:"price"`
	Rating        string    `json:"rating"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	FlashSale     bool      `json:"flashSale"`
	FlashSaleDate string    `json:"flashSaleDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidID    = errors.New("invalid product id")
	ErrInvalidQuery = errors.New("invalid product query")
)

type CreateProductRequest struct {
	Images        []string `json:"images" binding:"omitempty,max=20,dive,max=2048"`
	Title         string   `json:"title" binding:"required,max=200"`
	Price         Numeric  `json:"price" binding:"required"`
	Rating        Numeric  `json:"rating" binding:"required"`
	Category      string   `json:"category" binding:"omitempty,max=80"`
	Des           string   `json:"des" binding:"omitempty,max=5000"`
	Description   string   `json:"description" binding:"omitempty,max=5000"`
	FlashSale     bool     `json:"flashSale"`
	FlashSaleDate string   `json:"flashSaleDate" binding:"omitempty,max=64"`
}

// InsertResult mirrors the acknowledgement the storefront frontend expects.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

func NewFromCreateRequest(req CreateProductRequest, now time.Time) Product {
	description := req.Description
	if description == "" {
		description = req.Des
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	return Product{
		ID:            NewID(),
		Images:        images,
		Title:         req.Title,
		Price:         req.Price.String(),
		Rating:        req.Rating.String(),
		Category:      req.Category,
		Description:   description,
		FlashSale:     req.FlashSale,
		FlashSaleDate: req.FlashSaleDate,
		CreatedAt:     now.UTC(),
	}
}

// NewID returns a 24 character hex ObjectID, the id format on every backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// Fields returns the product as a document keyed by its JSON field names.
func (p Product) Fields() map[string]any {
	return map[string]any{
		"_id":           p.ID,
		"images":        p.Images,
		"title":         p.Title,
		"price":         p.Price,
		"rating":        p.Rating,
		"category":      p.Category,
		"description":   p.Description,
		"flashSale":     p.FlashSale,
		"flashSaleDate": p.FlashSaleDate,
		"createdAt":     p.CreatedAt,
	}
}
