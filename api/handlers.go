/*
handlers.go - HTTP handlers for the projection service

PURPOSE:
  Exposes the loaded book over HTTP: browse treaties, trigger a projection
  run, and page through result cells. The engine itself stays synchronous;
  a run executes inline in the request and the finished result is cached
  on the handler for the cell endpoints.

ERROR MAPPING:
  Data-quality errors (missing factors, invalid treaty attributes) -> 422
  Reconciliation failures                                          -> 422
  No completed run yet for a cell query                            -> 409
  Everything else                                                  -> 500
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the loaded book and the last completed run.
type Handler struct {
	Engine *cashflow.Engine
	Book   cashflow.Inputs

	mu   sync.RWMutex
	last *cashflow.Result
}

// NewHandler creates a handler for an already-loaded book.
func NewHandler(engine *cashflow.Engine, book cashflow.Inputs) *Handler {
	return &Handler{Engine: engine, Book: book}
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TREATIES
// =============================================================================

// ListTreaties returns the static attributes of every treaty in the book.
func (h *Handler) ListTreaties(w http.ResponseWriter, r *http.Request) {
	dtos := make([]TreatyDTO, len(h.Book.Treaties))
	for i, t := range h.Book.Treaties {
		dtos[i] = treatyDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// RunProjection executes the pipeline for the loaded book and caches the
// result for the cell endpoints.
func (h *Handler) RunProjection(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	engine := *h.Engine
	if req.ValuationMonth != 0 {
		valuation, err := treaty.ParseYYYYMM(req.ValuationMonth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid valuation_month", err)
			return
		}
		engine.Valuation = valuation
	}

	result, err := engine.Run(h.Book)
	if err != nil {
		status := http.StatusInternalServerError
		if cashflow.IsDataQuality(err) || errors.Is(err, cashflow.ErrReconciliation) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "projection run failed", err)
		return
	}

	h.mu.Lock()
	h.last = result
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, runResponse(result))
}

func runResponse(result *cashflow.Result) RunResponse {
	g := result.Grid
	n := g.Horizon.Months()

	resp := RunResponse{}
	for _, t := range g.Treaties {
		last := &g.Rows[t.ID][n-1]
		resp.Treaties = append(resp.Treaties, TreatySummaryDTO{
			ID:              string(t.ID),
			WrittenTotal:    t.WrittenTotal().String(),
			EarnedToDate:    last.EarnedToDate.String(),
			UnearnedReserve: last.UnearnedReserve.String(),
			UndevelopedPaid: last.UndevelopedPaid.String(),
		})
	}
	for _, c := range result.Reconciliation.Checks {
		resp.Checks = append(resp.Checks, checkDTO(c))
	}
	return resp
}

// GetCells pages through the last run's result cells for one treaty.
// Query: treaty (required), from, to (optional YYYYMM bounds).
func (h *Handler) GetCells(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	result := h.last
	h.mu.RUnlock()

	if result == nil {
		writeError(w, http.StatusConflict, "no completed projection run", nil)
		return
	}

	id := treaty.TreatyID(r.URL.Query().Get("treaty"))
	cells, ok := result.Grid.Rows[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown treaty", nil)
		return
	}

	from := result.Grid.Horizon.Start
	to := result.Grid.Horizon.End
	var err error
	if from, err = monthParam(r, "from", from); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from month", err)
		return
	}
	if to, err = monthParam(r, "to", to); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to month", err)
		return
	}

	var dtos []CellDTO
	for i := range cells {
		if cells[i].Month.AfterOrEqual(from) && cells[i].Month.BeforeOrEqual(to) {
			dtos = append(dtos, cellDTO(&cells[i]))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func monthParam(r *http.Request, name string, fallback treaty.Month) (treaty.Month, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return treaty.Month{}, err
	}
	return treaty.ParseYYYYMM(v)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
