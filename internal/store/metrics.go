package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// checkpointsTotal counts recorded history entries.
	// Labels: reason (the event kind that triggered the checkpoint)
	checkpointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowcanvas",
		Subsystem: "store",
		Name:      "checkpoints_total",
		Help:      "Total history checkpoints recorded",
	}, []string{"reason"})

	// historyMovesTotal counts undo and redo steps that moved the cursor.
	// Labels: direction (undo, redo)
	historyMovesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowcanvas",
		Subsystem: "store",
		Name:      "history_moves_total",
		Help:      "Total undo/redo steps applied",
	}, []string{"direction"})

	// coalescedEditsTotal counts field edits absorbed into a pending
	// debounced checkpoint.
	coalescedEditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flowcanvas",
		Subsystem: "store",
		Name:      "coalesced_field_edits_total",
		Help:      "Field edits folded into a debounced checkpoint",
	})
)
