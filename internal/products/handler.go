package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
	"github.com/micaaprocofio/ut5-tfu/internal/soap"
)

type Store interface {
	Create(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/products", h.HandleCreate)
	r.Get("/products", h.HandleList)
	r.Get("/products/{id}", h.HandleGet)

	r.Post("/soap/product", h.HandleCreateSOAP)
	r.Get("/soap/products", h.HandleListSOAP)
	r.Get("/soap/product/{id}", h.HandleGetSOAP)
}

type createProductRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Stock *int     `json:"stock"`
}

func (req createProductRequest) toNewProduct() (domain.NewProduct, bool) {
	if req.Name == nil || *req.Name == "" || req.Price == nil || req.Stock == nil {
		return domain.NewProduct{}, false
	}
	return domain.NewProduct{Name: *req.Name, Price: *req.Price, Stock: *req.Stock}, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	product, ok := h.create(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCreateSOAP(w http.ResponseWriter, r *http.Request) {
	product, ok := h.create(w, r)
	if !ok {
		return
	}
	h.writeSOAP(w, http.StatusCreated, func() ([]byte, error) { return soap.EncodeProduct(*product) })
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	var req createProductRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	newProduct, ok := req.toNewProduct()
	if !ok {
		h.writeError(w, http.StatusBadRequest, "name, price and stock are required")
		return nil, false
	}

	product, err := h.store.Create(r.Context(), newProduct)
	if err != nil {
		h.logger.Error("failed to create product", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}

	h.logger.Info("product created", "product_id", product.ID)
	return product, true
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, ok := h.get(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleGetSOAP(w http.ResponseWriter, r *http.Request) {
	product, ok := h.get(w, r)
	if !ok {
		return
	}
	h.writeSOAP(w, http.StatusOK, func() ([]byte, error) { return soap.EncodeProduct(*product) })
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return nil, false
	}

	return product, true
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("products listed", "count", len(products))
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleListSOAP(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeSOAP(w, http.StatusOK, func() ([]byte, error) { return soap.EncodeProducts(products) })
}

func (h *Handler) writeSOAP(w http.ResponseWriter, status int, encode func() ([]byte, error)) {
	body, err := encode()
	if err != nil {
		h.logger.Error("failed to encode soap response", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", soap.ContentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write soap response", "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
