// Package quotehttp exposes the computed views of a project: the priced
// quote, the payment schedule, the movement ledger, CSV exports and the
// won-project control center.
package quotehttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/export"
	"github.com/scontainr/quotecenter/internal/ledger"
	"github.com/scontainr/quotecenter/internal/logistics"
	"github.com/scontainr/quotecenter/internal/platform/httpx"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
)

// Handler wires the read-only computed endpoints.
type Handler struct {
	logger *slog.Logger
	svc    *project.Service
	cat    *catalog.Catalog
}

// NewHandler constructs handler.
func NewHandler(logger *slog.Logger, svc *project.Service, cat *catalog.Catalog) *Handler {
	return &Handler{logger: logger, svc: svc, cat: cat}
}

// MountRoutes registers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/projects/{projectID}/quote", h.getQuote)
	r.Get("/projects/{projectID}/quote/document", h.getQuoteDocument)
	r.Get("/projects/{projectID}/schedule", h.getSchedule)
	r.Get("/projects/{projectID}/ledger", h.getLedger)
	r.Get("/projects/{projectID}/export/quote.csv", h.exportQuoteCSV)
	r.Get("/projects/{projectID}/export/schedule.csv", h.exportScheduleCSV)
	r.Get("/control-center", h.getControlCenter)
}

// quoteResponse bundles logistics and pricing for one project.
type quoteResponse struct {
	Breakdown logistics.Breakdown `json:"breakdown"`
	Rows      []quote.Row         `json:"rows"`
	Totals    quote.Totals        `json:"totals"`
}

// ledgerResponse bundles the movement aggregates.
type ledgerResponse struct {
	Summary ledger.Summary    `json:"summary"`
	Flow    []ledger.FlowRow  `json:"flow"`
	Totals  ledger.FlowTotals `json:"totals"`
	Alerts  ledger.Alerts     `json:"alerts"`
}

func (h *Handler) price(id string) (project.Project, quoteResponse, error) {
	p, err := h.svc.Get(id)
	if err != nil {
		return project.Project{}, quoteResponse{}, err
	}
	breakdown := logistics.Compute(&p.State, h.cat)
	rows, totals := quote.BuildRows(&p.State, h.cat, breakdown.SharedTotalUSD)
	return p, quoteResponse{Breakdown: breakdown, Rows: rows, Totals: totals}, nil
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	_, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getQuoteDocument(w http.ResponseWriter, r *http.Request) {
	p, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, export.BuildQuoteDocument(p, resp.Rows, resp.Totals))
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	p, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, export.BuildScheduleDocument(p, resp.Rows))
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	p, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	fx := p.State.DefaultFXRate()
	httpx.JSON(w, http.StatusOK, ledgerResponse{
		Summary: ledger.Summarize(p.State.Movements, p.State.CostControls, resp.Totals.PriceUSD, fx),
		Flow:    ledger.Flow(p.State.Movements, fx),
		Totals:  ledger.FlowSummary(p.State.Movements, fx),
		Alerts:  ledger.UpcomingAlerts(p.State.Movements, time.Now(), fx),
	})
}

func (h *Handler) exportQuoteCSV(w http.ResponseWriter, r *http.Request) {
	p, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	doc := export.BuildQuoteDocument(p, resp.Rows, resp.Totals)
	h.serveCSV(w, fmt.Sprintf("quote-%s.csv", p.ID), func() error {
		return export.WriteQuoteCSV(w, doc)
	})
}

func (h *Handler) exportScheduleCSV(w http.ResponseWriter, r *http.Request) {
	p, resp, err := h.price(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	doc := export.BuildScheduleDocument(p, resp.Rows)
	h.serveCSV(w, fmt.Sprintf("schedule-%s.csv", p.ID), func() error {
		return export.WriteScheduleCSV(w, doc)
	})
}

func (h *Handler) serveCSV(w http.ResponseWriter, filename string, write func() error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(); err != nil {
		h.logger.Error("csv export", slog.Any("error", err))
	}
}

func (h *Handler) getControlCenter(w http.ResponseWriter, r *http.Request) {
	store := h.svc.Snapshot()
	httpx.JSON(w, http.StatusOK, ledger.BuildControlCenter(store.Projects, time.Now()))
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, project.ErrProjectNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("quote handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}
