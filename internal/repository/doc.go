// Package repository defines the data access interfaces for flowcanvas.
//
// The edited pipeline graph itself is never persisted; it lives in the
// store and its history. What is persisted is the analysis log: one record
// per pipeline checked by the validator endpoint or analyzed locally, so
// operators can see what was submitted and whether it was acyclic.
//
// # SQLite Implementation
//
// The sqlite subpackage implements AnalysisLog on modernc.org/sqlite. The
// default DSN is ":memory:", which keeps the log for the life of the
// process; a file path makes it durable. The schema is migrated on open.
package repository
