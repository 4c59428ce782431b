package statement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

var errBadRequest = errors.New("bad request")

type Handler struct {
	importSvc *importer.Service
	maxUpload int64
}

func NewHandler(importSvc *importer.Service, maxUpload int64) *Handler {
	return &Handler{
		importSvc: importSvc,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/accounts", h.accounts)
	r.Post("/upload", h.upload)
	r.Post("/preview", h.preview)
	r.Post("/overrides/fill-down", h.fillDown)
	r.Post("/overrides/default-category", h.defaultCategory)
	r.Post("/commit", h.commit)
	r.Post("/undo", h.undo)
	r.Get("/batches/latest", h.latestBatch)
}

// status maps pipeline errors onto HTTP status codes.
func status(err error) int {
	var formatErr *parser.FormatError

	switch {
	case errors.As(err, &formatErr),
		errors.Is(err, errBadRequest),
		errors.Is(err, parser.ErrUnknownFormat),
		errors.Is(err, encoding.ErrTooLarge),
		errors.Is(err, mapping.ErrIncomplete),
		errors.Is(err, fx.ErrUnknownMode),
		errors.Is(err, importer.ErrNothingToImport):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	up, err := h.importSvc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusOK, toUploadResponse(up))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	result, err := h.importSvc.Preview(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusOK, toPreviewResponse(result))
}

func (h *Handler) fillDown(w http.ResponseWriter, r *http.Request) {
	var body fillDownRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	field, err := body.field()
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	req, err := body.toRequest()
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	overrides, err := h.importSvc.FillDown(r.Context(), req, body.From, field)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusOK, overridesResponse{Overrides: overrides})
}

func (h *Handler) defaultCategory(w http.ResponseWriter, r *http.Request) {
	var body defaultCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if body.CategoryID == uuid.Nil {
		http.Error(w, "category_id is required", http.StatusBadRequest)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	overrides, err := h.importSvc.DefaultCategory(r.Context(), req, body.CategoryID, body.SubCategoryID)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusOK, overridesResponse{Overrides: overrides})
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	var body commitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	format := parser.FormatUnknown
	if body.FileFormat != "" {
		if format, err = parser.ParseFormat(body.FileFormat); err != nil {
			http.Error(w, err.Error(), status(err))
			return
		}
	}

	batch, err := h.importSvc.Commit(r.Context(), importer.CommitRequest{
		Request:           req,
		FileName:          body.FileName,
		FileFormat:        format,
		Charset:           encoding.Charset(body.Charset),
		HeaderFingerprint: body.HeaderFingerprint,
		ProfileID:         body.ProfileID,
		IncludeDuplicates: body.IncludeDuplicates,
	})
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusCreated, toBatchResponse(batch))
}

func (h *Handler) undo(w http.ResponseWriter, r *http.Request) {
	batch, err := h.importSvc.Undo(r.Context())
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	if batch == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toBatchResponse(batch))
}

func (h *Handler) accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.importSvc.Accounts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponses(accounts))
}

func (h *Handler) latestBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.importSvc.LatestBatch(r.Context())
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}

	writeJSON(w, http.StatusOK, toBatchResponse(batch))
}
