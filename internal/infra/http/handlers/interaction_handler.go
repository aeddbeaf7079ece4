package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/usecase"
)

type InteractionHandler struct {
	Interactions *usecase.InteractionUseCase
	Logger       logrus.FieldLogger
}

func NewInteractionHandler(uc *usecase.InteractionUseCase, logger logrus.FieldLogger) *InteractionHandler {
	return &InteractionHandler{Interactions: uc, Logger: logger}
}

func (h *InteractionHandler) Routes(r chi.Router) {
	r.Get("/leads/{id}/interactions", h.ListByLead)
	r.Post("/interactions", h.Create)
	r.Get("/follow-ups/upcoming", h.Upcoming)
	r.Get("/follow-ups/overdue", h.Overdue)
}

func (h *InteractionHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	items, err := h.Interactions.ListByLead(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateInteractionInput
	if !decodeJSON(w, r, &input) {
		return
	}

	it, err := h.Interactions.Create(r.Context(), currentUser(r), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *InteractionHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	items, err := h.Interactions.Upcoming(r.Context(), currentUser(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InteractionHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	items, err := h.Interactions.Overdue(r.Context(), currentUser(r))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
