package domain

import "errors"

// Connection is the request a renderer sends when the user drags from an
// output handle to an input handle.
type Connection struct {
	Source       string `json:"source" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target" validate:"required"`
	TargetHandle string `json:"targetHandle"`
}

// Validate checks that both endpoints are named
func (c Connection) Validate() error {
	if c.Source == "" {
		return errors.New("connection source required")
	}
	if c.Target == "" {
		return errors.New("connection target required")
	}
	return nil
}

// Involves checks if this connection touches the given node ID
func (c Connection) Involves(nodeID string) bool {
	return c.Source == nodeID || c.Target == nodeID
}
