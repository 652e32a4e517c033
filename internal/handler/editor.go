package handler

import (
	"fmt"
	"net/http"

	"flowcanvas/internal/controls"
	"flowcanvas/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateNodeRequest is the body of POST /api/nodes
type CreateNodeRequest struct {
	Type     domain.NodeKind `json:"type" validate:"required"`
	Position domain.Position `json:"position"`
}

// FieldUpdateRequest is the body of PUT /api/nodes/{id}/data/{field}
type FieldUpdateRequest struct {
	Value any `json:"value"`
}

// HistoryMoveResponse reports an undo or redo
type HistoryMoveResponse struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// GetGraph returns the live graph. The ETag is the graph fingerprint.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	g, fp := h.svc.GetGraph()
	etag := fmt.Sprintf("%q", fp)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.writeJSON(w, g, http.StatusOK)
}

// ListKinds returns the node kinds offered by the toolbar
func (h *GraphHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Kinds(), http.StatusOK)
}

// CreateNode adds a node of the requested kind
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.svc.CreateNode(req.Type, req.Position)
	if err != nil {
		h.writeError(w, "Failed to create node", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// ApplyNodeChanges applies a renderer node change batch and returns the graph
func (h *GraphHandler) ApplyNodeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []domain.NodeChange
	if err := h.decode(w, r, &changes); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.ApplyNodeChanges(changes); err != nil {
		h.writeError(w, "Failed to apply node changes", err.Error(), statusFor(err))
		return
	}
	g, _ := h.svc.GetGraph()
	h.writeJSON(w, g, http.StatusOK)
}

// ApplyEdgeChanges applies a renderer edge change batch and returns the graph
func (h *GraphHandler) ApplyEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []domain.EdgeChange
	if err := h.decode(w, r, &changes); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.ApplyEdgeChanges(changes); err != nil {
		h.writeError(w, "Failed to apply edge changes", err.Error(), statusFor(err))
		return
	}
	g, _ := h.svc.GetGraph()
	h.writeJSON(w, g, http.StatusOK)
}

// Connect creates an edge between two handles
func (h *GraphHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var conn domain.Connection
	if err := h.decode(w, r, &conn); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	edge, err := h.svc.Connect(conn)
	if err != nil {
		h.writeError(w, "Failed to connect", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, edge, http.StatusCreated)
}

// UpdateField sets one data field of a node
func (h *GraphHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	field := chi.URLParam(r, "field")

	var req FieldUpdateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if !scalar(req.Value) {
		h.writeError(w, "Invalid request body", "value must be a string, number or boolean", http.StatusBadRequest)
		return
	}

	found, err := h.svc.UpdateField(id, field, req.Value)
	if err != nil {
		h.writeError(w, "Failed to update field", err.Error(), statusFor(err))
		return
	}
	if !found {
		h.writeError(w, "Not found", fmt.Sprintf("node %s not found", id), http.StatusNotFound)
		return
	}

	node, _ := h.svc.Store().Node(id)
	h.writeJSON(w, node, http.StatusOK)
}

// scalar reports whether a decoded JSON value may be stored in node data
func scalar(v any) bool {
	switch v.(type) {
	case string, float64, bool:
		return true
	}
	return false
}

// DeleteSelected removes the selected nodes and their edges
func (h *GraphHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteSelected()
	if err != nil {
		h.writeError(w, "Failed to delete selection", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, map[string]int{"deleted": n}, http.StatusOK)
}

// Undo steps history back
func (h *GraphHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.historyMove(w, "undo", h.svc.Undo)
}

// Redo steps history forward
func (h *GraphHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.historyMove(w, "redo", h.svc.Redo)
}

func (h *GraphHandler) historyMove(w http.ResponseWriter, name string, move func() (bool, error)) {
	applied, err := move()
	if err != nil {
		h.writeError(w, "Failed to "+name, err.Error(), statusFor(err))
		return
	}
	state := h.svc.History()
	h.writeJSON(w, HistoryMoveResponse{
		Applied: applied,
		CanUndo: state.CanUndo,
		CanRedo: state.CanRedo,
	}, http.StatusOK)
}

// GetHistory returns the undo history summary
func (h *GraphHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.History(), http.StatusOK)
}

// Shortcut resolves a key press and performs the bound action
func (h *GraphHandler) Shortcut(w http.ResponseWriter, r *http.Request) {
	var ev controls.KeyEvent
	if err := h.decode(w, r, &ev); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Shortcut(ev)
	if err != nil {
		h.writeError(w, "Failed to perform shortcut", err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, res, http.StatusOK)
}

// Submit sends the live graph to the validator. A validator failure still
// answers 200 with a locally computed result flagged offline.
func (h *GraphHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Submit(r.Context()), http.StatusOK)
}

// Export writes the live graph as a downloadable document
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	data, contentType, err := h.svc.ExportBytes(format)
	if err != nil {
		h.writeError(w, "Failed to export", err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pipeline.%s", format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write export", zap.String("format", format), zap.Error(err))
	}
}

// Import replaces the live graph with the request body
func (h *GraphHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	res, err := h.svc.Import(format, body)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Anything the codec rejected is the client's document
			status = http.StatusBadRequest
		}
		h.writeError(w, "Failed to import", err.Error(), status)
		return
	}
	h.writeJSON(w, res, http.StatusOK)
}
