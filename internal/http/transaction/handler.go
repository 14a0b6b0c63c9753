package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{idKey}", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	idKey, err := strconv.ParseInt(chi.URLParam(r, "idKey"), 10, 64)
	if err != nil || idKey <= 0 {
		http.Error(w, "invalid id_key", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), idKey)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to get transaction", "id_key", idKey, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
