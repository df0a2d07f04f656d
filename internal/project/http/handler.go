// Package projecthttp exposes the project store over JSON: wholesale state
// get/put, import, snapshots, and per-project CRUD with the pricing-parameter
// reconciliation on state writes.
package projecthttp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/logistics"
	"github.com/scontainr/quotecenter/internal/platform/httpx"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
	"github.com/scontainr/quotecenter/jobs"
)

// maxImportBytes caps uploaded export files.
const maxImportBytes = 16 << 20

// Handler wires the project state endpoints.
type Handler struct {
	logger   *slog.Logger
	svc      *project.Service
	snaps    *project.SnapshotStore
	cat      *catalog.Catalog
	validate *validator.Validate
	jobs     *jobs.Client
}

// NewHandler constructs handler. snaps and jobsClient may be nil when Redis
// is not configured.
func NewHandler(logger *slog.Logger, svc *project.Service, snaps *project.SnapshotStore, cat *catalog.Catalog, jobsClient *jobs.Client) *Handler {
	return &Handler{
		logger:   logger,
		svc:      svc,
		snaps:    snaps,
		cat:      cat,
		validate: validator.New(),
		jobs:     jobsClient,
	}
}

// MountRoutes registers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/state", func(r chi.Router) {
		r.Get("/", h.getState)
		r.Put("/", h.putState)
		r.Post("/import", h.importState)
		r.Get("/snapshots", h.listSnapshots)
		r.Post("/snapshots", h.pushSnapshot)
		r.Post("/snapshots/restore", h.restoreSnapshot)
		r.Post("/backup", h.triggerBackup)
	})
	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.createProject)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Post("/duplicate", h.duplicateProject)
			r.Delete("/", h.deleteProject)
			r.Patch("/meta", h.patchMeta)
			r.Put("/state", h.putProjectState)
			r.Put("/current", h.setCurrent)
			r.Put("/installments/count", h.setInstallmentCount)
			r.Post("/movements", h.addMovement)
			r.Put("/movements/{movementID}", h.updateMovement)
			r.Delete("/movements/{movementID}", h.deleteMovement)
		})
	})
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.svc.Snapshot())
}

func (h *Handler) putState(w http.ResponseWriter, r *http.Request) {
	var store project.Store
	if err := httpx.DecodeJSON(r, &store); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	for i := range store.Projects {
		if err := validateState(&store.Projects[i].State); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	httpx.JSON(w, http.StatusOK, h.svc.ReplaceAll(store))
}

func (h *Handler) importState(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	n, err := h.svc.Import(raw)
	if err != nil {
		if errors.Is(err, project.ErrUnrecognizedImport) {
			httpx.Problem(w, http.StatusBadRequest, "Unrecognized Export", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, importResponse{Imported: n})
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snaps == nil {
		httpx.JSON(w, http.StatusOK, snapshotListResponse{})
		return
	}
	resp := snapshotListResponse{}
	snaps, err := h.snaps.Snapshots(r.Context())
	if err != nil {
		h.logger.Warn("list snapshots", slog.Any("error", err))
	}
	for _, s := range snaps {
		resp.Snapshots = append(resp.Snapshots, snapshotSummary{TS: s.TS, Projects: len(s.Projects)})
	}
	backups, err := h.snaps.AutoBackups(r.Context())
	if err != nil {
		h.logger.Warn("list auto backups", slog.Any("error", err))
	}
	for _, s := range backups {
		resp.AutoBackups = append(resp.AutoBackups, snapshotSummary{TS: s.TS, Projects: len(s.Projects)})
	}
	if age, err := h.snaps.BackupAge(r.Context()); err == nil {
		resp.BackupAgeMS = age.Milliseconds()
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pushSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.PushSnapshot(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.RestoreLatest(r.Context())
	if err != nil {
		if errors.Is(err, project.ErrNoSnapshot) {
			httpx.Problem(w, http.StatusNotFound, "No Snapshot", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *Handler) triggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Backups Unavailable", "background worker not configured")
		return
	}
	if _, err := h.jobs.EnqueueStateBackup(r.Context()); err != nil {
		h.logger.Warn("enqueue state backup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, h.svc.Create(req.Name))
}

func (h *Handler) duplicateProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Duplicate(chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "projectID")); err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) patchMeta(w http.ResponseWriter, r *http.Request) {
	var req metaPatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.svc.UpdateMeta(chi.URLParam(r, "projectID"), req.apply)
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// putProjectState replaces a project's working state. When the margin or
// discount changed, stale price overrides are reconciled against the rows
// computed under the previous parameters before the new state is stored.
func (h *Handler) putProjectState(w http.ResponseWriter, r *http.Request) {
	var state project.State
	if err := httpx.DecodeJSON(r, &state); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := validateState(&state); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id := chi.URLParam(r, "projectID")
	existing, err := h.svc.Get(id)
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	if state.MarginPct != existing.State.MarginPct || state.DiscountPct != existing.State.DiscountPct {
		shared := logistics.Compute(&existing.State, h.cat).SharedTotalUSD
		prevRows, _ := quote.BuildRows(&existing.State, h.cat, shared)
		quote.ApplyPricingParamChange(&state, prevRows, state.MarginPct, state.DiscountPct)
	}

	p, err := h.svc.PutState(id, state)
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) setCurrent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetCurrent(chi.URLParam(r, "projectID")); err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) setInstallmentCount(w http.ResponseWriter, r *http.Request) {
	var req installmentCountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.svc.SetInstallmentCount(chi.URLParam(r, "projectID"), req.Count)
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) addMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	m, err := h.svc.AddMovement(chi.URLParam(r, "projectID"), req.toMovement())
	if err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) updateMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	req.ID = chi.URLParam(r, "movementID")
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.svc.UpdateMovement(chi.URLParam(r, "projectID"), req.toMovement()); err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMovement(chi.URLParam(r, "projectID"), chi.URLParam(r, "movementID")); err != nil {
		h.respondProjectErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondProjectErr(w http.ResponseWriter, err error) {
	if errors.Is(err, project.ErrProjectNotFound) || errors.Is(err, project.ErrMovementNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("project handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}

// validateState checks the bounds the pricing math depends on. Everything
// else is normalized on write.
func validateState(s *project.State) error {
	if s.MarginPct < 0 || s.MarginPct > 100 {
		return fmt.Errorf("margin_pct must be between 0 and 100, got %v", s.MarginPct)
	}
	if s.DiscountPct < 0 || s.DiscountPct > 100 {
		return fmt.Errorf("discount_pct must be between 0 and 100, got %v", s.DiscountPct)
	}
	for i, l := range s.Lines {
		if l.Quantity < 0 {
			return fmt.Errorf("lines[%d]: quantity must not be negative", i)
		}
		if !catalog.ValidSize(l.Size) {
			return fmt.Errorf("lines[%d]: unknown module size %d", i, l.Size)
		}
	}
	return nil
}
