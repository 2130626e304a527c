package products

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
	"github.com/micaaprocofio/ut5-tfu/internal/soap"
)

type memoryStore struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
}

func (s *memoryStore) Create(_ context.Context, p domain.NewProduct) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	product := domain.Product{ID: int64(len(s.products) + 1), Name: p.Name, Price: p.Price, Stock: p.Stock}
	s.products = append(s.products, product)
	return &product, nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) List(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Product{}, s.products...), nil
}

func newRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Create(t *testing.T) {
	t.Run("creates and returns the product", func(t *testing.T) {
		store := &memoryStore{}
		rec := do(newRouter(store), http.MethodPost, "/products/", `{"name":"Laptop","price":1200.5,"stock":5}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var product domain.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
		assert.Equal(t, domain.Product{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5}, product)
	})

	t.Run("accepts negative price and stock", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{}), http.MethodPost, "/products", `{"name":"Refund","price":-1,"stock":-2}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects server controlled fields", func(t *testing.T) {
		store := &memoryStore{}
		rec := do(newRouter(store), http.MethodPost, "/products/", `{"id":50,"name":"Laptop","price":1,"stock":1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.products)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{}), http.MethodPost, "/products/", `{"name":"Laptop","price":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{}), http.MethodPost, "/products/", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{err: errors.New("db down")}), http.MethodPost, "/products/", `{"name":"a","price":1,"stock":1}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	store := &memoryStore{products: []domain.Product{{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5}}}
	router := newRouter(store)

	t.Run("found", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var product domain.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
		assert.Equal(t, "Laptop", product.Name)
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products/9", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"product not found"}`, rec.Body.String())
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, path := range []string{"/products/abc", "/products/0", "/products/-3"} {
			rec := do(router, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		}
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("empty list is an empty array", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{products: []domain.Product{}}), http.MethodGet, "/products/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{err: errors.New("boom")}), http.MethodGet, "/products/", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_SOAP(t *testing.T) {
	t.Run("create returns 201 xml", func(t *testing.T) {
		store := &memoryStore{}
		rec := do(newRouter(store), http.MethodPost, "/soap/product", `{"name":"Laptop","price":1200.5,"stock":5}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<id>1</id><name>Laptop</name><price>1200.5</price><stock>5</stock>")
		assert.Len(t, store.products, 1)
	})

	t.Run("get returns the product envelope", func(t *testing.T) {
		store := &memoryStore{products: []domain.Product{{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5}}}
		rec := do(newRouter(store), http.MethodGet, "/soap/product/1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		product, err := soap.DecodeProduct(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, store.products[0], product)
	})

	t.Run("get unknown product is a json 404", func(t *testing.T) {
		rec := do(newRouter(&memoryStore{}), http.MethodGet, "/soap/product/4", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotContains(t, rec.Body.String(), "soap:Envelope")
	})

	t.Run("list wraps every product", func(t *testing.T) {
		store := &memoryStore{products: []domain.Product{
			{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5},
			{ID: 2, Name: "Mouse", Price: 20, Stock: 3},
		}}
		rec := do(newRouter(store), http.MethodGet, "/soap/products", "")

		require.Equal(t, http.StatusOK, rec.Code)
		products, err := soap.DecodeProducts(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, store.products, products)
	})
}
