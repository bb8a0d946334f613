// Package lifecycle holds shared constants for application start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown operations such as the initial
// database ping and the HTTP server drain.
const DefaultTimeout = 10 * time.Second
