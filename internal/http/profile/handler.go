package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

type Handler struct {
	svc *profile.Service
}

func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Post("/detect", h.detect)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.save)
	r.Delete("/{id}", h.delete)
}

type saveRequest struct {
	Name       string                `json:"name"`
	Headers    []string              `json:"headers"`
	Mapping    mapping.ColumnMapping `json:"mapping"`
	Format     mapping.FormatOptions `json:"format"`
	Transforms mapping.Transforms    `json:"transforms"`
}

type detectRequest struct {
	Headers []string `json:"headers"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, profile.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if profiles == nil {
		profiles = []*profile.Profile{}
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := profile.SaveParams{
		Name:       req.Name,
		Headers:    req.Headers,
		Mapping:    req.Mapping,
		Format:     req.Format,
		Transforms: req.Transforms,
	}

	code := http.StatusCreated

	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		params.ID = &id
		code = http.StatusOK
	}

	p, err := h.svc.Save(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, code, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Detect(r.Context(), req.Headers)
	if err != nil {
		writeError(w, err)
		return
	}

	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, p)
}
