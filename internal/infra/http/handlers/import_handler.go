package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/http/middleware"
	"github.com/xavierca1/leadflow/internal/usecase"
)

const maxUploadBytes = 10 << 20

type ImportHandler struct {
	Imports *usecase.ImportUseCase
	Limiter *RateLimiter
	Logger  logrus.FieldLogger
}

func NewImportHandler(uc *usecase.ImportUseCase, limiter *RateLimiter, logger logrus.FieldLogger) *ImportHandler {
	return &ImportHandler{Imports: uc, Limiter: limiter, Logger: logger}
}

// Routes expects an authenticated router. Everything but the upload is
// admin-only.
func (h *ImportHandler) Routes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.Limiter != nil {
				r.Use(h.Limiter.Middleware)
			}
			r.Post("/upload", h.Upload)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(entity.RoleAdmin))
			r.Post("/trigger", h.Trigger)
			r.Get("/state/{sourceId}", h.State)
			r.Get("/logs/{sourceId}", h.Logs)
			r.Get("/configuration", h.GetConfiguration)
			r.Post("/configurations", h.CreateConfiguration)
			r.Patch("/configurations/{id}", h.UpdateConfiguration)
		})
	})
}

type TriggerRequest struct {
	SourceID string `json:"source_id"`
}

// Trigger (POST /imports/trigger) answers before the run finishes.
func (h *ImportHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.Imports.Trigger(r.Context(), currentUser(r), req.SourceID)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	status := http.StatusAccepted
	if !res.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

func (h *ImportHandler) State(w http.ResponseWriter, r *http.Request) {
	cur, err := h.Imports.State(r.Context(), chi.URLParam(r, "sourceId"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

// Logs (GET /imports/logs/{sourceId}?limit=)
func (h *ImportHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit must be a number")
			return
		}
		limit = n
	}

	logs, err := h.Imports.ListLogs(r.Context(), chi.URLParam(r, "sourceId"), limit)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *ImportHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Imports.GetConfiguration(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *ImportHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateConfigurationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	cfg, err := h.Imports.CreateConfiguration(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *ImportHandler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateConfigurationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	cfg, err := h.Imports.UpdateConfiguration(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Upload (POST /imports/upload) takes a multipart "file" and an optional
// "source" form field, and answers once every row is processed.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "expected a multipart form under 10MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "file is required")
		return
	}
	defer file.Close()

	h.Logger.WithFields(logrus.Fields{"file": header.Filename, "size": header.Size}).Info("processing uploaded spreadsheet")

	out, err := h.Imports.Upload(r.Context(), currentUser(r), file, r.FormValue("source"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
