package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hance08/teller/internal/service"
	"github.com/pterm/pterm"
)

type handlers struct {
	ledger Ledger
	status StatusSource
	log    *pterm.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listTransactions serves GET /api/v1/transactions?kind=&account=&limit=
func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kind, err := service.ParseKind(q.Get("kind"))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.ledger.List(r.Context(), service.ListQuery{
		Kind:    kind,
		Account: q.Get("account"),
		Limit:   limit,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidLimit) || errors.Is(err, service.ErrInvalidKind) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("Failed to list transactions", h.log.Args("error", err.Error()))
		respondError(w, "failed to list transactions", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []service.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": entries,
		"count":        len(entries),
	})
}

func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Status(r.Context())
	if err != nil {
		h.log.Error("Failed to read status", h.log.Args("error", err.Error()))
		respondError(w, "failed to read status", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, st)
}
