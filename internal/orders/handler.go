package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

type Reader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type Handler struct {
	admitter *Admitter
	repo     Reader
	logger   *slog.Logger
}

func NewHandler(admitter *Admitter, repo Reader, logger *slog.Logger) *Handler {
	return &Handler{
		admitter: admitter,
		repo:     repo,
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.HandleCreate)
	r.Get("/orders", h.HandleList)
	r.Get("/orders/{id}", h.HandleGet)
	r.Get("/orders/customer/{id}", h.HandleListByCustomer)
}

// createOrderRequest enumerates the client-settable fields; id and date are
// assigned by the server and rejected if sent.
type createOrderRequest struct {
	CustomerID int64    `json:"customer_id"`
	Total      *float64 `json:"total"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CustomerID <= 0 {
		h.writeError(w, http.StatusBadRequest, "customer_id must be a positive integer")
		return
	}

	if req.Total == nil {
		h.writeError(w, http.StatusBadRequest, "total is required")
		return
	}

	order, err := h.admitter.Admit(r.Context(), domain.NewOrder{CustomerID: req.CustomerID, Total: *req.Total})
	if err != nil {
		switch {
		case errors.Is(err, ErrCustomerNotFound):
			h.logger.Info("order rejected", "customer_id", req.CustomerID)
			h.writeError(w, http.StatusNotFound, ErrCustomerNotFound.Error())
		case errors.Is(err, ErrCustomerUnverifiable):
			h.logger.Warn("order rejected, customer unverifiable", "customer_id", req.CustomerID, "error", err)
			h.writeError(w, http.StatusServiceUnavailable, ErrCustomerUnverifiable.Error())
		default:
			h.logger.Error("failed to create order", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.parseID(w, r)
	if !ok {
		return
	}

	orders, err := h.repo.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to list customer orders", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("customer orders listed", "customer_id", customerID, "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
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
