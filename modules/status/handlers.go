package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notifkit/notifkit/pkg/alerts"
	"github.com/notifkit/notifkit/pkg/history"
	"github.com/notifkit/notifkit/pkg/logger"
	"github.com/notifkit/notifkit/pkg/notification"
)

// defaultPageSize bounds history listings unless the caller asks otherwise.
// An explicit limit=0 removes the bound.
const defaultPageSize = 50

type handlers struct {
	svc     *alerts.Service
	history history.Storage
	logger  *slog.Logger
}

func (h *handlers) queue(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.QueueStatus())
}

func (h *handlers) result(w http.ResponseWriter, r *http.Request) {
	res, ok := h.svc.Result(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "result not found")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "history not configured")
		return
	}
	userID := chi.URLParam(r, "userID")

	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.history.List(r.Context(), userID, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history list failed",
			logger.UserID(userID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "history not configured")
		return
	}
	userID := chi.URLParam(r, "userID")

	count, err := h.history.CountUnread(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "unread count failed",
			logger.UserID(userID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to count unread")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func parseListOptions(q url.Values) (history.ListOptions, error) {
	opts := history.ListOptions{Limit: defaultPageSize}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid limit %q", v)
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid offset %q", v)
		}
		opts.Offset = n
	}
	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid unread %q", v)
		}
		opts.OnlyUnread = b
	}
	for _, v := range q["kind"] {
		kind := notification.Kind(v)
		if !kind.Valid() {
			return opts, fmt.Errorf("invalid kind %q", v)
		}
		opts.Kinds = append(opts.Kinds, kind)
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, fmt.Errorf("invalid since %q, want RFC3339", v)
		}
		opts.Since = &ts
	}
	return opts, nil
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
