// Package service implements the editor's application logic.
//
// PipelineService sits between the HTTP handlers and the core packages. It
// drives the graph store for every editing operation, runs submissions
// through the submission client, serves the validator endpoint's analysis
// and records it in the analysis log, and converts graphs through the
// codecs for import and export.
//
// # Event System
//
// Store mutations, submissions and validator analyses are published on an
// EventBus. The SSE hub subscribes to it to push updates to connected
// editors.
package service
