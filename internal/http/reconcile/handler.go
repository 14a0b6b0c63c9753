package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=reconcile

type Runner interface {
	RunOnce(ctx context.Context) (reconcile.Result, error)
}

type PendingCounter interface {
	Pending(ctx context.Context) (int64, error)
}

type Handler struct {
	runner  Runner
	pending PendingCounter
	tracker *status.Tracker
}

func NewHandler(runner Runner, pending PendingCounter, tracker *status.Tracker) *Handler {
	return &Handler{runner: runner, pending: pending, tracker: tracker}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sync", h.sync)
	r.Get("/status", h.status)
}

type syncResponse struct {
	Status string `json:"status"`
	Synced int    `json:"synced"`
	Errors int    `json:"errors"`
}

type statusResponse struct {
	status.Snapshot
	Pending *int64 `json:"pending"`
}

// sync triggers one reconciliation pass and waits for it.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.RunOnce(r.Context())

	var commitErr *reconcile.CommitError

	switch {
	case errors.Is(err, scheduler.ErrPassInProgress), errors.Is(err, transaction.ErrPassLocked):
		http.Error(w, "reconciliation pass already in progress", http.StatusConflict)
	case errors.As(err, &commitErr):
		slog.Error("reconcile commit failed", "records", commitErr.Records, "error", commitErr.Err)
		writeJSON(w, http.StatusInternalServerError, syncResponse{Status: "failed", Synced: result.Synced, Errors: result.Errors})
	case err != nil:
		slog.Error("reconcile pass failed", "error", err)
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, syncResponse{Status: "ok", Synced: result.Synced, Errors: result.Errors})
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Snapshot: h.tracker.Snapshot()}

	if h.pending != nil {
		n, err := h.pending.Pending(r.Context())
		if err != nil {
			slog.Warn("failed to count pending records", "error", err)
		} else {
			resp.Pending = &n
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
