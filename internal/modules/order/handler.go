package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/apotekcare/apotek-backend/internal/modules/auth"
	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service
	log     *slog.Logger
}

func NewHandler(service Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/orders", h.placeOrder)               // POST   /orders
		r.Get("/orders/{id}", h.getOrder)             // GET    /orders/{id}
		r.Get("/user/orders", h.listUserOrders)       // GET    /user/orders
		r.Put("/user/orders/{id}", h.updateOrder)     // PUT    /user/orders/{id}
		r.Put("/user/orders/{id}/cancel", h.cancelOrder) // PUT /user/orders/{id}/cancel
		r.Delete("/user/orders/{id}", h.deleteOrder)  // DELETE /user/orders/{id}
	})
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Get("/orders", h.listAllOrders)             // GET    /orders
		r.Put("/orders/{id}/status", h.updateStatus)  // PUT    /orders/{id}/status
		r.Delete("/orders/{id}", h.deleteOrder)       // DELETE /orders/{id}
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "missing caller identity"})
		return
	}
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), callerID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message": "order created successfully",
		"order":   o,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CallerID(r.Context())
	o, err := h.service.GetOrder(r.Context(), callerID, auth.CallerRole(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CallerID(r.Context())
	orders, err := h.service.ListUserOrders(r.Context(), callerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "order status updated successfully",
		"order":   o,
	})
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CallerID(r.Context())
	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateOrder(r.Context(), callerID, auth.CallerRole(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "order updated successfully",
		"order":   o,
	})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CallerID(r.Context())
	o, err := h.service.CancelOrder(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "order cancelled successfully",
		"order":   o,
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.CallerID(r.Context())
	err := h.service.DeleteOrder(r.Context(), callerID, auth.CallerRole(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "order deleted successfully"})
}

// respondError maps the order error taxonomy to HTTP status codes.
// Persistence failures are logged with full context and sanitized for the
// caller; everything else is a client error with its message intact.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		stockErr      *InsufficientStockError
		authzErr      *AuthorizationError
		stateErr      *InvalidStateError
	)
	switch {
	case errors.As(err, &stockErr):
		respond(w, http.StatusBadRequest, map[string]interface{}{
			"message":                    "some medicines have insufficient stock",
			"insufficientStockMedicines": stockErr.Items,
		})
	case errors.As(err, &validationErr):
		respond(w, http.StatusBadRequest, map[string]string{"message": validationErr.Msg})
	case errors.As(err, &stateErr):
		respond(w, http.StatusBadRequest, map[string]string{"message": stateErr.Msg})
	case errors.As(err, &authzErr):
		respond(w, http.StatusForbidden, map[string]string{"message": authzErr.Msg})
	case errors.As(err, &notFoundErr):
		respond(w, http.StatusNotFound, map[string]string{"message": notFoundErr.Error()})
	default:
		h.log.Error("order operation failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"message": "server error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
