// Package domain defines the core types of the flowcanvas pipeline editor.
//
// This package holds the value types that every other layer exchanges: the
// nodes and edges a user wires together on the canvas, the connection request
// a renderer sends when a user drags between two handles, and the incremental
// change sets a renderer emits while the user moves, selects, or removes items.
//
// # Core Types
//
// Node is a unit of the pipeline with an immutable kind, a canvas position, a
// free-form field bag (Data) and a selection flag.
//
// Edge is a directed connection from a named output handle of one node to a
// named input handle of another. Parallel edges between the same pair of nodes
// are allowed because their handles differ.
//
// Graph is a complete {nodes, edges} document. It is the unit recorded by undo
// history, exported by the codecs, and submitted for validation.
//
// # Changes
//
// NodeChange and EdgeChange are tagged deltas (add, remove, select, position).
// ApplyNodeChanges and ApplyEdgeChanges fold a batch of them into a collection
// without touching the input slice.
//
// # Design Principles
//
// - Clone methods produce structurally independent copies; no serialization
// - No database or transport dependencies
// - Kinds are tagged strings, field schemas live in the catalog package
package domain
