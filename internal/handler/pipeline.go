package handler

import (
	"errors"
	"net/http"
	"strconv"

	"flowcanvas/internal/dag"
	"flowcanvas/internal/service"
	"flowcanvas/internal/submission"

	"go.uber.org/zap"
)

const (
	defaultAnalysesLimit = 20
	maxAnalysesLimit     = 500
)

// Ping answers the validator's liveness check
func (h *GraphHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"Ping": "Pong"}, http.StatusOK)
}

// ParsePipeline analyzes a submitted pipeline document
func (h *GraphHandler) ParsePipeline(w http.ResponseWriter, r *http.Request) {
	var req submission.Request
	if err := h.decode(w, r, &req); err != nil {
		h.writeDetail(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	a, err := h.svc.Analyze(r.Context(), req.Pipeline)
	switch {
	case errors.Is(err, service.ErrInvalidPipelineJSON):
		h.writeDetail(w, "Invalid JSON in pipeline data", http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrEmptyPipeline):
		h.writeDetail(w, "Pipeline must contain at least one node", http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Warn("failed to parse pipeline", zap.Error(err))
		h.writeDetail(w, "Error parsing pipeline: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, dag.Result{
		NumNodes: a.NumNodes,
		NumEdges: a.NumEdges,
		IsDag:    a.IsDag,
	}, http.StatusOK)
}

// ListAnalyses returns recent analyses, newest first
func (h *GraphHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := defaultAnalysesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeDetail(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxAnalysesLimit)
	}

	list, err := h.svc.ListAnalyses(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list analyses", zap.Error(err))
		h.writeDetail(w, "Failed to list analyses", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, list, http.StatusOK)
}
