package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/usecase"
)

type NotificationHandler struct {
	Notifications *usecase.NotificationUseCase
	Logger        logrus.FieldLogger
}

func NewNotificationHandler(uc *usecase.NotificationUseCase, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{Notifications: uc, Logger: logger}
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/notifications", h.List)
	r.Post("/notifications/read-all", h.MarkAllRead)
	r.Post("/notifications/{id}/read", h.MarkRead)
}

// List (GET /notifications?unread_only=true)
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))

	items, err := h.Notifications.List(r.Context(), currentUser(r), unreadOnly)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notifications.MarkRead(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notifications.MarkAllRead(r.Context(), currentUser(r)); err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
