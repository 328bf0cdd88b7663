package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/starford/assistant/internal/calculator"
)

var errNotFinite = errors.New("result is not a finite number")

// Calculate handles POST /api/calc.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalcRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := calculator.Evaluate(req.Expression)
	if err == nil && (math.IsInf(result, 0) || math.IsNaN(result)) {
		err = errNotFinite
	}
	h.metrics.Operation("calculator", "evaluate", err)
	if errors.Is(err, errNotFinite) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CalcResponse{Expression: req.Expression, Result: result})
}
