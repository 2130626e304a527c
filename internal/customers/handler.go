package customers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

type Store interface {
	Create(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]domain.Customer, error)
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
	r.Post("/customers", h.HandleCreate)
	r.Get("/customers", h.HandleList)
	r.Get("/customers/{id}", h.HandleGet)
	r.Get("/customers/{id}/exists", h.HandleExists)
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newCustomer := domain.NewCustomer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if newCustomer.Name == "" || newCustomer.Email == "" {
		h.writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	existing, err := h.store.GetByEmail(r.Context(), newCustomer.Email)
	if err != nil {
		h.logger.Error("failed to look up customer email", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		h.writeError(w, http.StatusBadRequest, ErrEmailTaken.Error())
		return
	}

	customer, err := h.store.Create(r.Context(), newCustomer)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusBadRequest, ErrEmailTaken.Error())
			return
		}
		h.logger.Error("failed to create customer", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("customer created", "customer_id", customer.ID)
	h.writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	customer, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get customer", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if customer == nil {
		h.writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	h.writeJSON(w, http.StatusOK, customer)
}

// HandleExists answers the existence oracle query. An unknown id is a successful
// negative answer; only store failures produce an error status.
func (h *Handler) HandleExists(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	exists, err := h.store.Exists(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to check customer existence", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Debug("customer existence checked", "customer_id", id, "exists", exists)
	h.writeJSON(w, http.StatusOK, domain.CustomerExistence{Exists: exists, CustomerID: id})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("customers listed", "count", len(customers))
	h.writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
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
