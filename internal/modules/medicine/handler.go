package medicine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints. Browsing is public, mutation is
// admin-only.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/medicines", h.listMedicines)
	r.Get("/medicines/categories", h.listCategories)
	r.Get("/medicines/{id}", h.getMedicine)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Post("/medicines", h.createMedicine)
		r.Put("/medicines/{id}", h.updateMedicine)
		r.Delete("/medicines/{id}", h.deleteMedicine)
	})
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	f := ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Featured: r.URL.Query().Get("featured") == "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respond(w, http.StatusBadRequest, map[string]string{"message": "invalid limit"})
			return
		}
		f.Limit = limit
	}
	medicines, err := h.service.ListMedicines(r.Context(), f)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"message": "server error"})
		return
	}
	if medicines == nil {
		medicines = []*Medicine{}
	}
	respond(w, http.StatusOK, medicines)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"message": "server error"})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respond(w, http.StatusOK, categories)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetMedicine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, m)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	m, err := h.service.CreateMedicine(r.Context(), req)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	respond(w, http.StatusCreated, m)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	m, err := h.service.UpdateMedicine(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":  "medicine updated successfully",
		"medicine": m,
	})
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMedicine(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "medicine deleted successfully"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		respond(w, http.StatusNotFound, map[string]string{"message": "medicine not found"})
		return
	}
	respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
