package realtime

import v1 "github.com/yatinannam/foundathon-landing-sub000/shared/contracts/availability/v1"

// Wire contract, re-exported for the gateway and its tests.
type (
	Envelope         = v1.Envelope
	Snapshot         = v1.Snapshot
	AvailabilityItem = v1.AvailabilityItem
	ErrorPayload     = v1.ErrorPayload
)

const (
	Version      = v1.Version
	Subprotocol  = v1.Subprotocol
	TypeSnapshot = v1.TypeSnapshot
	TypeRefresh  = v1.TypeRefresh
	TypeError    = v1.TypeError
)
