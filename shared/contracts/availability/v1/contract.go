// Package v1 defines the availability feed protocol v1.
//
// It is shared between the server and its clients so the wire format has a
// single authoritative definition.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	Version = 1

	// Subprotocol must be offered by clients during the WebSocket handshake.
	Subprotocol = "foundathon.availability.v1"

	// TypeSnapshot is pushed by the server on connect and after every change.
	TypeSnapshot = "availability.snapshot"
	// TypeRefresh may be sent by clients to request a fresh snapshot.
	TypeRefresh = "availability.refresh"
	// TypeError reports a problem with a client frame.
	TypeError = "error"
)

var (
	clientTypes = map[string]struct{}{
		TypeRefresh: {},
	}
	serverTypes = map[string]struct{}{
		TypeSnapshot: {},
		TypeError:    {},
	}
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks a client-sent envelope.
func (e Envelope) Validate() error {
	return e.validate(clientTypes)
}

// ValidateServer checks a server-sent envelope.
func (e Envelope) ValidateServer() error {
	return e.validate(serverTypes)
}

func (e Envelope) validate(allowed map[string]struct{}) error {
	if e.V != Version {
		return fmt.Errorf("invalid protocol version: got=%d want=%d", e.V, Version)
	}
	if e.Type == "" {
		return errors.New("missing type")
	}
	if _, ok := allowed[e.Type]; !ok {
		return fmt.Errorf("unsupported type: %s", e.Type)
	}
	return nil
}

// Snapshot is the payload of TypeSnapshot.
type Snapshot struct {
	Capacity int                `json:"capacity"`
	Items    []AvailabilityItem `json:"items"`
}

// AvailabilityItem is one problem statement's capacity state.
type AvailabilityItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Taken     int    `json:"taken"`
	Remaining int    `json:"remaining"`
	Full      bool   `json:"full"`
}

// ErrorPayload is the payload of TypeError.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
