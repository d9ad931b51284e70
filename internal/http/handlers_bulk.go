// Package httpx provides the HTTP API for bulk captioning, product views and
// storefront webhooks.
package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/image-captioner/captioner/internal/domain/model"
)

// BulkUpdater starts bulk jobs and reports their progress.
type BulkUpdater interface {
	Start(ctx context.Context, shopID string, op model.BulkOperation) (*model.BulkUpdateJob, error)
	Progress(ctx context.Context, shopID, jobID string) (*model.BulkUpdateProgress, error)
}

// BulkUpdateHandlers provides HTTP handlers for bulk captioning jobs.
type BulkUpdateHandlers struct {
	Svc    BulkUpdater
	Logger *slog.Logger
}

type startBulkUpdateResponse struct {
	ID string `json:"productCatalogBulkUpdateRequestId"`
}

// Start accepts a bulk operation and returns as soon as the job row exists.
// The sweep itself continues after the response is written.
func (h *BulkUpdateHandlers) Start(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromPath(w, r)
	if !ok {
		return
	}
	var op model.BulkOperation
	if !DecodeJSON(w, r, &op) {
		return
	}

	job, err := h.Svc.Start(r.Context(), shop, op)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if caller, ok := CallerFromContext(r.Context()); ok && h.Logger != nil {
		h.Logger.InfoContext(r.Context(), "bulk update accepted",
			"shop_id", shop, "job_id", job.ID, "kind", op.Kind, "caller", caller.String())
	}
	WriteJSON(w, http.StatusAccepted, startBulkUpdateResponse{ID: job.ID})
}

// Latest reports progress of the newest job for the shop.
func (h *BulkUpdateHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, "")
}

// Get reports progress of the job named in the path.
func (h *BulkUpdateHandlers) Get(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, r.PathValue("id"))
}

func (h *BulkUpdateHandlers) progress(w http.ResponseWriter, r *http.Request, jobID string) {
	shop, ok := shopFromPath(w, r)
	if !ok {
		return
	}
	p, err := h.Svc.Progress(r.Context(), shop, jobID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}
