package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, unreadOnly bool, limit int64) ([]*domain.Notification, error)
	SetRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type NotificationHandler struct {
	notifications NotificationService
	timeout       time.Duration
	log           *zap.Logger
}

func NewNotificationHandler(notifications NotificationService, timeout time.Duration, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		timeout:       timeout,
		log:           log,
	}
}

type NotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
}

type SetReadRequestDTO struct {
	Read *bool `json:"read" validate:"required"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true" || q.Get("unread") == "1"
	var limit int64
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	notifications, err := h.notifications.List(ctx, unreadOnly, limit)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &NotificationsResponse{Notifications: notifications})
}

func (h *NotificationHandler) SetRead(w http.ResponseWriter, r *http.Request) {
	var req SetReadRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.notifications.SetRead(ctx, chi.URLParam(r, "id"), *req.Read); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	updated, err := h.notifications.MarkAllRead(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	count, err := h.notifications.UnreadCount(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
