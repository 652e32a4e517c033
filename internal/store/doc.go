// Package store holds the live pipeline graph and its undo history.
//
// A Store is constructed explicitly and shared by reference with every
// collaborator. All reads and writes go through one mutex. Mutations that
// represent a discrete user action record a history checkpoint before the
// lock is released, so the recorded snapshot is always the post-mutation
// state. Field edits are coalesced through a single store-wide debounce
// window instead.
package store
