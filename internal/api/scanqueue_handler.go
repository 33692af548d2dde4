// Copyright (c) 2026 Yomikata. All rights reserved.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/constants"
	"github.com/yomikata/ingest/internal/platform/respond"
	"github.com/yomikata/ingest/internal/scanqueue"
	"github.com/yomikata/ingest/pkg/pagination"
)

// ScanQueueSubmitter is the subset of [scanqueue.Queue] the admin surface
// depends on.
type ScanQueueSubmitter interface {
	Submit(libraryID string, priority scanqueue.TaskPriority) string
	Get(taskID string) *scanqueue.ScanTask
	GetByLibrary(libraryID string) *scanqueue.ScanTask
	ListPending() []*scanqueue.ScanTask
	ListProcessing() []*scanqueue.ScanTask
	ListHistory(limit int) []*scanqueue.ScanTask
	Cancel(taskID string) error
}

// ScanQueueHandler exposes scan-queue status and control over HTTP. It is
// the only application-level surface this service carries; everything
// else (catalog browsing, reading) lives outside this admin process.
type ScanQueueHandler struct {
	queue ScanQueueSubmitter
}

// NewScanQueueHandler constructs a ScanQueueHandler.
func NewScanQueueHandler(queue ScanQueueSubmitter) *ScanQueueHandler {
	return &ScanQueueHandler{queue: queue}
}

// Routes mounts the scan-queue admin endpoints.
func (h *ScanQueueHandler) Routes(r chi.Router) {
	r.Get("/scans", h.listStatus)
	r.Get("/scans/history", h.listHistory)
	r.Get("/scans/{taskID}", h.getTask)
	r.Post("/scans/{taskID}/cancel", h.cancelTask)
	r.Post("/libraries/{libraryID}/scans", h.submitScan)
}

type scanStatusResponse struct {
	Pending    []*scanqueue.ScanTask `json:"pending"`
	Processing []*scanqueue.ScanTask `json:"processing"`
}

// listStatus handles GET /scans: the live pending and processing queue.
func (h *ScanQueueHandler) listStatus(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, scanStatusResponse{
		Pending:    h.queue.ListPending(),
		Processing: h.queue.ListProcessing(),
	})
}

// listHistory handles GET /scans/history?limit=N. An absent limit falls
// through to the queue's own spec-mandated default (constants.
// DefaultScanHistoryLimit); a supplied one is parsed and abuse-clamped by
// pkg/pagination, the same boundary-clamping logic any other paginated
// admin listing in this service would reuse.
func (h *ScanQueueHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if r.URL.Query().Get("limit") != "" {
		limit = pagination.FromRequest(r).Limit
	}

	history := h.queue.ListHistory(limit)

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = constants.DefaultScanHistoryLimit
	}

	respond.Paginated(w, history, pagination.NewMeta(pagination.DefaultPage, effectiveLimit, len(history)))
}

// getTask handles GET /scans/{taskID}.
func (h *ScanQueueHandler) getTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task := h.queue.Get(taskID)
	if task == nil {
		respond.Error(w, r, apperr.NotFound("scan_task"))
		return
	}
	respond.OK(w, task)
}

// cancelTask handles POST /scans/{taskID}/cancel.
func (h *ScanQueueHandler) cancelTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if err := h.queue.Cancel(taskID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

type submitScanRequest struct {
	Priority string `json:"priority"`
}

// submitScan handles POST /libraries/{libraryID}/scans. priority defaults
// to normal; "high" requests immediate priority.
func (h *ScanQueueHandler) submitScan(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")

	priority := scanqueue.PriorityNormal
	var body submitScanRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if body.Priority == "high" {
		priority = scanqueue.PriorityHigh
	}

	taskID := h.queue.Submit(libraryID, priority)
	respond.Created(w, map[string]string{"task_id": taskID})
}
