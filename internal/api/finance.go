package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/sse"
	"github.com/starford/assistant/internal/workspace"
)

func financeFilter(r *http.Request) (finance.Filter, error) {
	var f finance.Filter
	q := r.URL.Query()
	if q.Has("category") {
		cat := q.Get("category")
		f.Category = &cat
	}
	if v := q.Get("until"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return f, err
		}
		f.Until = &d
	}
	return f, nil
}

func (h *Handler) totals(t finance.Totals) TotalsResponse {
	return TotalsResponse{
		Totals:    t,
		Currency:  h.currency,
		Formatted: t.Format(h.currency),
	}
}

// ListFinance handles GET /api/finance.
func (h *Handler) ListFinance(w http.ResponseWriter, r *http.Request) {
	f, err := financeFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var list []models.FinanceRecord
	_ = h.call(workspace.DomainFinance, "list", func() error {
		list = h.ws.Finance.List(f)
		return nil
	})
	writeJSON(w, http.StatusOK, FinanceListResponse{Records: list, Total: len(list)})
}

// GetFinance handles GET /api/finance/{id}.
func (h *Handler) GetFinance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rec models.FinanceRecord
	if err := h.call(workspace.DomainFinance, "get", func() (err error) {
		rec, err = h.ws.Finance.Get(id)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateFinance handles POST /api/finance.
func (h *Handler) CreateFinance(w http.ResponseWriter, r *http.Request) {
	var req CreateFinanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var rec models.FinanceRecord
	if err := h.call(workspace.DomainFinance, "add", func() (err error) {
		rec, err = h.ws.Finance.Add(req.Amount.String(), req.Category, req.Date, req.Description)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindCreated, workspace.DomainFinance, strconv.Itoa(rec.ID))
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateFinance handles PATCH /api/finance/{id}. Unknown fields are ignored.
func (h *Handler) UpdateFinance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := models.FinancePatchFromFields(fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rec models.FinanceRecord
	if err := h.call(workspace.DomainFinance, "edit", func() (err error) {
		rec, err = h.ws.Finance.Edit(id, patch)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindUpdated, workspace.DomainFinance, strconv.Itoa(id))
	writeJSON(w, http.StatusOK, rec)
}

// DeleteFinance handles DELETE /api/finance/{id}.
func (h *Handler) DeleteFinance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.call(workspace.DomainFinance, "delete", func() error {
		return h.ws.Finance.Delete(id)
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindDeleted, workspace.DomainFinance, strconv.Itoa(id))
	w.WriteHeader(http.StatusNoContent)
}

// FinanceReport handles GET /api/finance/report?start=DD-MM-YYYY&end=DD-MM-YYYY.
func (h *Handler) FinanceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, r, fmt.Errorf("%w: start and end are required", apperr.ErrMalformedInput))
		return
	}
	start, err := date.Parse(q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := date.Parse(q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rep finance.Report
	_ = h.call(workspace.DomainFinance, "report", func() error {
		rep = h.ws.Finance.Report(start, end)
		return nil
	})
	writeJSON(w, http.StatusOK, ReportResponse{
		Start:          rep.Start,
		End:            rep.End,
		TotalsResponse: h.totals(rep.Totals),
		Categories:     rep.Categories,
	})
}

// FinanceBalance handles GET /api/finance/balance.
func (h *Handler) FinanceBalance(w http.ResponseWriter, r *http.Request) {
	var t finance.Totals
	_ = h.call(workspace.DomainFinance, "balance", func() error {
		t = h.ws.Finance.Balance()
		return nil
	})
	writeJSON(w, http.StatusOK, h.totals(t))
}
