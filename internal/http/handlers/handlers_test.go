package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/babycare/storefront/internal/config"
	"github.com/babycare/storefront/internal/domain/product"
	"github.com/babycare/storefront/internal/domain/user"
	"github.com/babycare/storefront/internal/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAuth struct {
	registerErr error
	token       string
	loginErr    error
}

func (f *fakeAuth) Register(context.Context, user.RegisterRequest) error {
	return f.registerErr
}

func (f *fakeAuth) Login(context.Context, user.LoginRequest) (string, error) {
	return f.token, f.loginErr
}

type fakeCatalog struct {
	lastCtx  context.Context
	ctxErr   error
	created  product.CreateProductRequest
	list     []product.Product
	listErr  error
	lastList url.Values
	item     product.Product
	getErr   error
}

func (f *fakeCatalog) CreateProduct(_ context.Context, req product.CreateProductRequest) (product.InsertResult, error) {
	f.created = req
	return product.InsertResult{Acknowledged: true, InsertedID: "65a1f0c2e4b0a1b2c3d4e5f6"}, nil
}

func (f *fakeCatalog) ListProducts(ctx context.Context, values url.Values) ([]product.Product, error) {
	f.lastCtx = ctx
	f.ctxErr = ctx.Err()
	f.lastList = values
	return f.list, f.listErr
}

func (f *fakeCatalog) GetProduct(context.Context, string) (product.Product, error) {
	return f.item, f.getErr
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestRouter(a handlers.Authenticator, c handlers.Catalog, notFoundMode string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()

	ah := handlers.NewAuthHandler(a, discard)
	ph := handlers.NewProductsHandler(c, discard, notFoundMode)

	r.POST("/register", ah.Register)
	r.POST("/login", ah.Login)
	r.POST("/products", ph.CreateProduct)
	r.GET("/products", ph.ListProducts)
	r.GET("/products/:id", ph.GetProductByID)

	return r
}

func do(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{name: "created", wantStatus: http.StatusCreated, wantSuccess: true, wantMessage: "User registered successfully"},
		{name: "duplicate", err: user.ErrEmailTaken, wantStatus: http.StatusBadRequest, wantMessage: "User already exists"},
		{name: "store down", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMessage: "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeAuth{registerErr: tc.err}, &fakeCatalog{}, config.NotFoundModeNull)

			w := do(r, http.MethodPost, "/register", `{"name":"Ann","email":"ann@example.com","password":"s3cret!"}`, nil)

			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, tc.wantSuccess, body["success"])
			assert.Equal(t, tc.wantMessage, body["message"])
			assert.NotContains(t, w.Body.String(), "s3cret!")
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Run("success returns token", func(t *testing.T) {
		r := newTestRouter(&fakeAuth{token: "signed.jwt.token"}, &fakeCatalog{}, config.NotFoundModeNull)

		w := do(r, http.MethodPost, "/login", `{"email":"ann@example.com","password":"s3cret!"}`, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "signed.jwt.token", body["token"])
	})

	t.Run("invalid credentials", func(t *testing.T) {
		r := newTestRouter(&fakeAuth{loginErr: user.ErrInvalidCredentials}, &fakeCatalog{}, config.NotFoundModeNull)

		w := do(r, http.MethodPost, "/login", `{"email":"ann@example.com","password":"wrong"}`, nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid email or password", body["message"])
		assert.NotContains(t, body, "token")
	})
}

func TestCreateProductHandler(t *testing.T) {
	catalog := &fakeCatalog{}
	r := newTestRouter(&fakeAuth{}, catalog, config.NotFoundModeNull)

	w := do(r, http.MethodPost, "/products", `{"title":"Bib","price":4.5,"rating":"5","images":["a.png"]}`, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully product create!", body["message"])

	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["acknowledged"])
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", result["insertedId"])

	assert.Equal(t, product.Numeric("4.5"), catalog.created.Price)
}

func TestListProductsHandler(t *testing.T) {
	catalog := &fakeCatalog{list: []product.Product{{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Title: "Bib", Images: []string{}}}}
	r := newTestRouter(&fakeAuth{}, catalog, config.NotFoundModeNull)

	w := do(r, http.MethodGet, "/products?category=toys&limit=5", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "toys", catalog.lastList.Get("category"))

	body := decode(t, w)
	assert.Equal(t, "successfully retrieve products!", body["message"])

	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", data[0].(map[string]any)["_id"])

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	cached := do(r, http.MethodGet, "/products?category=toys&limit=5", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())
}

type ctxMarker struct{}

func TestListProductsHandler_StoreContextFollowsRequest(t *testing.T) {
	catalog := &fakeCatalog{}
	r := newTestRouter(&fakeAuth{}, catalog, config.NotFoundModeNull)

	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxMarker{}, "trace"))
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/products", nil).WithContext(parent)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, catalog.lastCtx)
	assert.Equal(t, "trace", catalog.lastCtx.Value(ctxMarker{}))

	deadline, hasDeadline := catalog.lastCtx.Deadline()
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(3*time.Second), deadline, time.Second)
}

func TestListProductsHandler_CanceledRequestReachesStore(t *testing.T) {
	catalog := &fakeCatalog{}
	r := newTestRouter(&fakeAuth{}, catalog, config.NotFoundModeNull)

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/products", nil).WithContext(parent)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, catalog.lastCtx)
	assert.ErrorIs(t, catalog.ctxErr, context.Canceled)
}

func TestListProductsHandler_EmptyIsArray(t *testing.T) {
	r := newTestRouter(&fakeAuth{}, &fakeCatalog{}, config.NotFoundModeNull)

	w := do(r, http.MethodGet, "/products", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestListProductsHandler_InvalidQuery(t *testing.T) {
	catalog := &fakeCatalog{listErr: product.ErrInvalidQuery}
	r := newTestRouter(&fakeAuth{}, catalog, config.NotFoundModeNull)

	w := do(r, http.MethodGet, "/products?limit=abc", "", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestGetProductHandler(t *testing.T) {
	found := product.Product{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Title: "Bib", Images: []string{}}

	tests := []struct {
		name       string
		mode       string
		item       product.Product
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "found", mode: config.NotFoundModeNull, item: found, wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				assert.Equal(t, "Bib", data["title"])
			},
		},
		{
			name: "missing in null mode", mode: config.NotFoundModeNull, err: product.ErrNotFound, wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				v, ok := body["data"]
				assert.True(t, ok)
				assert.Nil(t, v)
			},
		},
		{
			name: "missing in 404 mode", mode: config.NotFoundMode404, err: product.ErrNotFound, wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, "Product not found", body["message"])
			},
		},
		{
			name: "malformed id", mode: config.NotFoundModeNull, err: product.ErrInvalidID, wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, false, body["success"])
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeAuth{}, &fakeCatalog{item: tc.item, getErr: tc.err}, tc.mode)

			w := do(r, http.MethodGet, "/products/65a1f0c2e4b0a1b2c3d4e5f6", "", nil)

			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			tc.check(t, decode(t, w))
		})
	}
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	build := func(p handlers.Pinger) *gin.Engine {
		r := gin.New()
		h := handlers.NewHealthHandler(p, discard)
		r.GET("/", h.Root)
		r.GET("/healthz", h.Healthz)
		r.GET("/readyz", h.Readyz)
		return r
	}

	r := build(fakePinger{})

	w := do(r, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Server is running smoothly", body["message"])
	assert.NotEmpty(t, body["timestamp"])

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/readyz", "", nil).Code)

	down := build(fakePinger{err: errors.New("no servers")})
	assert.Equal(t, http.StatusServiceUnavailable, do(down, http.MethodGet, "/readyz", "", nil).Code)
}
