package realtime

import "time"

const (
	// Max bytes per websocket frame read. Clients only send tiny control frames.
	maxFrameBytes = 4 << 10

	// Heartbeat defaults (can be overridden by env in gateway.go).
	heartbeatInterval = 25 * time.Second
	heartbeatTimeout  = 5 * time.Second

	// Per-connection refresh limits (requests per window).
	refreshLimitEvents = 10
	refreshLimitWindow = 10 * time.Second
)
