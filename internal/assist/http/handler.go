// Package assisthttp exposes the chat proxy. Responses always carry an ok
// flag so the client can render upstream failures inline.
package assisthttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scontainr/quotecenter/internal/assist"
	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/ledger"
	"github.com/scontainr/quotecenter/internal/logistics"
	"github.com/scontainr/quotecenter/internal/platform/httpx"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
)

// Handler wires the chat endpoint.
type Handler struct {
	logger *slog.Logger
	assist *assist.Service
	svc    *project.Service
	cat    *catalog.Catalog
}

// NewHandler constructs handler.
func NewHandler(logger *slog.Logger, assistSvc *assist.Service, svc *project.Service, cat *catalog.Catalog) *Handler {
	return &Handler{logger: logger, assist: assistSvc, svc: svc, cat: cat}
}

// MountRoutes registers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/assist/chat", h.chat)
}

type chatRequest struct {
	Question   string           `json:"question"`
	ProjectID  string           `json:"project_id"`
	History    []assist.Message `json:"history"`
	IncludeWeb bool             `json:"includeWeb"`
}

type chatResponse struct {
	OK     bool   `json:"ok"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, chatResponse{OK: false, Error: "cuerpo inválido"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		httpx.JSON(w, http.StatusBadRequest, chatResponse{OK: false, Error: "Falta la pregunta"})
		return
	}

	answer, err := h.assist.Ask(r.Context(), assist.Request{
		Question:   req.Question,
		Context:    h.buildContext(req.ProjectID),
		History:    req.History,
		IncludeWeb: req.IncludeWeb,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assist.ErrNoAPIKey) {
			h.logger.Warn("assist not configured")
		} else {
			h.logger.Error("assist chat", slog.Any("error", err))
		}
		httpx.JSON(w, status, chatResponse{OK: false, Error: err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, chatResponse{OK: true, Answer: answer})
}

// buildContext summarizes the requested project, or the currently open one
// when no id is given. An empty summary is fine; the model is told there is
// no context.
func (h *Handler) buildContext(projectID string) string {
	var p project.Project
	if projectID != "" {
		got, err := h.svc.Get(projectID)
		if err != nil {
			return ""
		}
		p = got
	} else {
		got, ok := h.svc.Current()
		if !ok {
			return ""
		}
		p = got
	}

	breakdown := logistics.Compute(&p.State, h.cat)
	_, totals := quote.BuildRows(&p.State, h.cat, breakdown.SharedTotalUSD)
	store := h.svc.Snapshot()
	cc := ledger.BuildControlCenter(store.Projects, time.Now())
	return assist.BuildContext(p, totals, totals.CostUSD, cc)
}
