package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/babycare/storefront/internal/config"
	"github.com/babycare/storefront/internal/domain/product"
	"github.com/gin-gonic/gin"
)

const MsgProductsRetrieved = "successfully retrieve products!"

type Catalog interface {
	CreateProduct(ctx context.Context, req product.CreateProductRequest) (product.InsertResult, error)
	ListProducts(ctx context.Context, values url.Values) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

type ProductsHandler struct {
	catalog      Catalog
	log          *slog.Logger
	notFoundMode string
}

// NewProductsHandler builds the catalog handlers. notFoundMode decides whether a
// missing product is a 200 with null data or a 404.
func NewProductsHandler(catalog Catalog, log *slog.Logger, notFoundMode string) *ProductsHandler {
	return &ProductsHandler{
		catalog:      catalog,
		log:          log,
		notFoundMode: notFoundMode,
	}
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	result, err := h.catalog.CreateProduct(cctx, req)

	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Successfully product create!", gin.H{"result": result})
}

func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	products, err := h.catalog.ListProducts(cctx, ctx.Request.URL.Query())

	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	if products == nil {
		products = []product.Product{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, envelope(true, MsgProductsRetrieved, gin.H{"data": products}))
}

func (h *ProductsHandler) GetProductByID(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	p, err := h.catalog.GetProduct(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, product.ErrNotFound) && h.notFoundMode != config.NotFoundMode404 {
			RespondSuccess(ctx, http.StatusOK, MsgProductsRetrieved, gin.H{"data": nil})
			return
		}

		RespondServiceError(ctx, h.log, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, envelope(true, MsgProductsRetrieved, gin.H{"data": p}))
}
