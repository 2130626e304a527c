package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
	"github.com/micaaprocofio/ut5-tfu/internal/existence"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newTestRouter(checker existence.Checker, store *memoryStore) http.Handler {
	h := NewHandler(newAdmitter(checker, store, nil), store, discardLogger())
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	h.Register(r)
	return r
}

func permissiveFor(t *testing.T, known ...int64) existence.Checker {
	srv := customersServer(t, known...)
	return existence.NewPermissiveChecker(existence.NewClient(srv.URL, srv.Client(), time.Second), discardLogger())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestHandleCreate_Accepted(t *testing.T) {
	store := &memoryStore{}
	r := newTestRouter(permissiveFor(t, 1), store)

	rec := do(t, r, http.MethodPost, "/orders", `{"customer_id": 1, "total": 1500}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, int64(1), order.CustomerID)
	assert.Equal(t, 1500.0, order.Total)
	assert.False(t, order.Date.IsZero())
}

func TestHandleCreate_UnknownCustomer(t *testing.T) {
	store := &memoryStore{}
	r := newTestRouter(permissiveFor(t, 1), store)

	rec := do(t, r, http.MethodPost, "/orders", `{"customer_id": 9999, "total": 10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "customer not found", errorMessage(t, rec))
	assert.Zero(t, store.count())
}

func TestHandleCreate_CustomersDown(t *testing.T) {
	client := existence.NewClient("http://127.0.0.1:1", &http.Client{}, time.Second)

	t.Run("permissive admits", func(t *testing.T) {
		store := &memoryStore{}
		r := newTestRouter(existence.NewPermissiveChecker(client, discardLogger()), store)

		rec := do(t, r, http.MethodPost, "/orders", `{"customer_id": 42, "total": 99.9}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var order domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		assert.Equal(t, int64(42), order.CustomerID)
	})

	t.Run("strict rejects", func(t *testing.T) {
		store := &memoryStore{}
		r := newTestRouter(existence.NewStrictChecker(client, discardLogger()), store)

		rec := do(t, r, http.MethodPost, "/orders", `{"customer_id": 42, "total": 99.9}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "customer service unavailable", errorMessage(t, rec))
		assert.Zero(t, store.count())
	})
}

func TestHandleCreate_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"customer_id":`, "invalid request body"},
		{"server assigned id", `{"id": 5, "customer_id": 1, "total": 1}`, "invalid request body"},
		{"server assigned date", `{"customer_id": 1, "total": 1, "date": "2020-01-01T00:00:00Z"}`, "invalid request body"},
		{"missing customer", `{"total": 1}`, "customer_id must be a positive integer"},
		{"negative customer", `{"customer_id": -3, "total": 1}`, "customer_id must be a positive integer"},
		{"missing total", `{"customer_id": 1}`, "total is required"},
		{"null total", `{"customer_id": 1, "total": null}`, "total is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			r := newTestRouter(permissiveFor(t, 1), store)

			rec := do(t, r, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
			assert.Zero(t, store.count())
		})
	}
}

func TestHandleCreate_StoreError(t *testing.T) {
	store := &memoryStore{err: errors.New("db down")}
	r := newTestRouter(permissiveFor(t, 1), store)

	rec := do(t, r, http.MethodPost, "/orders", `{"customer_id": 1, "total": 1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
}

func TestHandleGetAndList(t *testing.T) {
	date := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &memoryStore{orders: []domain.Order{
		{ID: 1, CustomerID: 1, Date: date, Total: 10},
		{ID: 2, CustomerID: 2, Date: date, Total: 20},
		{ID: 3, CustomerID: 1, Date: date, Total: 30},
	}}
	r := newTestRouter(permissiveFor(t), store)

	t.Run("get", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var order domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		assert.Equal(t, domain.Order{ID: 2, CustomerID: 2, Date: date, Total: 20}, order)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/99", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "order not found", errorMessage(t, rec))
	})

	t.Run("get invalid id", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid id", errorMessage(t, rec))
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var orders []domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
		assert.Len(t, orders, 3)
	})

	t.Run("by customer", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/customer/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var orders []domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
		require.Len(t, orders, 2)
		assert.Equal(t, int64(1), orders[0].ID)
		assert.Equal(t, int64(3), orders[1].ID)
	})

	t.Run("by customer without orders", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/orders/customer/7", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
