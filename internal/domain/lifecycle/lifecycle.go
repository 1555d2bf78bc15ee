// Package lifecycle holds shared constants for application start/stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown of servers and clients.
const DefaultTimeout = 10 * time.Second
