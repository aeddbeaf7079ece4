package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/usecase"
)

type LeadHandler struct {
	Leads  *usecase.LeadUseCase
	Logger logrus.FieldLogger
}

func NewLeadHandler(leads *usecase.LeadUseCase, logger logrus.FieldLogger) *LeadHandler {
	return &LeadHandler{Leads: leads, Logger: logger}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/leads", h.List)
	r.Post("/leads", h.Create)
	r.Get("/leads/filter-values", h.FilterValues)
	r.Get("/leads/{id}", h.Get)
	r.Patch("/leads/{id}", h.Update)
	r.Delete("/leads/{id}", h.Delete)
}

// List (GET /leads)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := leadFilterFromQuery(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return
	}

	leads, err := h.Leads.List(r.Context(), currentUser(r), filter)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) FilterValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.Leads.FilterValues(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Leads.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Leads.Create(r.Context(), currentUser(r), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Leads.Update(r.Context(), currentUser(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Leads.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func leadFilterFromQuery(r *http.Request) (entity.LeadFilter, error) {
	q := r.URL.Query()
	f := entity.LeadFilter{
		Search:         q.Get("search"),
		Source:         q.Get("source"),
		Ownership:      entity.Ownership(q.Get("ownership")),
		Furnishing:     entity.Furnishing(q.Get("furnishing")),
		Project:        q.Get("project"),
		InterestedArea: q.Get("interested_area"),
		InterestLevel:  entity.InterestLevel(q.Get("interest_level")),
		CallStatus:     entity.CallStatus(q.Get("call_status")),
		AssignedUserID: q.Get("assigned_user_id"),
	}

	var err error
	for key, dst := range map[string]**time.Time{
		"created_from":  &f.CreatedFrom,
		"created_to":    &f.CreatedTo,
		"modified_from": &f.ModifiedFrom,
		"modified_to":   &f.ModifiedTo,
	} {
		if *dst, err = parseTime(q.Get(key)); err != nil {
			return f, err
		}
	}
	return f, nil
}
