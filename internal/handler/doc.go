// Package handler implements the HTTP surface of the flow editor.
//
// Two groups of endpoints are served from one chi router:
//
// The editor API under /api drives the live graph: node creation, renderer
// change batches, connections, field edits, selection deletion, undo and
// redo, keyboard shortcuts, submission and import/export. Errors are JSON
// with an {error, details} structure.
//
// The validator endpoints (GET / and /pipelines/...) analyze a submitted
// pipeline document and report its node count, edge count and whether it is
// a DAG. Errors use a {detail} structure.
//
// # Server-Sent Events
//
// The /events endpoint streams store and submission events to clients
// through the hub package. Prometheus metrics are exposed on /metrics.
package handler
