package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/usecase"
)

type UserHandler struct {
	Users  *usecase.UserUseCase
	Logger logrus.FieldLogger
}

func NewUserHandler(uc *usecase.UserUseCase, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Users: uc, Logger: logger}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/users", h.List)
	r.Get("/users/me", h.Me)
	r.Get("/users/{id}", h.Get)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
