package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const soapContentType = "text/xml"

type Handler struct {
	productsProxy  *ServiceProxy
	customersProxy *ServiceProxy
	ordersProxy    *ServiceProxy
	version        string
	logger         *slog.Logger
}

func NewHandler(productsProxy, customersProxy, ordersProxy *ServiceProxy, version string, logger *slog.Logger) *Handler {
	return &Handler{
		productsProxy:  productsProxy,
		customersProxy: customersProxy,
		ordersProxy:    ordersProxy,
		version:        version,
		logger:         logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealth)

	r.Post("/products/soap/create", h.HandleSOAP("/soap/product"))
	r.Get("/products/soap/list", h.HandleSOAP("/soap/products"))
	r.Get("/products/soap/{id}", h.HandleSOAPProduct)

	r.HandleFunc("/products", h.HandleProducts)
	r.HandleFunc("/products/*", h.HandleProducts)
	r.HandleFunc("/customers", h.HandleCustomers)
	r.HandleFunc("/customers/*", h.HandleCustomers)
	r.HandleFunc("/orders", h.HandleOrders)
	r.HandleFunc("/orders/*", h.HandleOrders)
}

type infoResponse struct {
	Message  string            `json:"message"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

func (h *Handler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, infoResponse{
		Message: "E-Commerce API Gateway",
		Version: h.version,
		Services: map[string]string{
			"products":  h.productsProxy.BaseURL(),
			"customers": h.customersProxy.BaseURL(),
			"orders":    h.ordersProxy.BaseURL(),
		},
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "gateway": "ok"})
}

func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.productsProxy, r.URL.Path, "")
}

func (h *Handler) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.customersProxy, r.URL.Path, "")
}

func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.ordersProxy, r.URL.Path, "")
}

// HandleSOAP forwards to a fixed products service path and labels the reply as XML.
func (h *Handler) HandleSOAP(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.proxyRequest(w, r, h.productsProxy, path, soapContentType)
	}
}

func (h *Handler) HandleSOAPProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.proxyRequest(w, r, h.productsProxy, "/soap/product/"+id, soapContentType)
}

// proxyRequest relays status and body verbatim. A non-empty contentType
// overrides whatever the backend declared.
func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, proxy *ServiceProxy, path, contentType string) {
	resp, err := proxy.ForwardRequest(r.Context(), r, path)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", path)
		h.writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied",
		"method", r.Method,
		"path", path,
		"status", resp.StatusCode,
		"backend", strings.TrimPrefix(proxy.BaseURL(), "http://"),
	)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
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
