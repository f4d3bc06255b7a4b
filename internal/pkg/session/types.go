// internal/pkg/session/types.go
package session

import "time"

// Limit is a fixed-window attempt budget.
type Limit struct {
	MaxAttempts int64
	Window      time.Duration
}

// DefaultLoginLimit allows 5 login attempts per 15 minutes per (ip, email).
var DefaultLoginLimit = Limit{MaxAttempts: 5, Window: 15 * time.Minute}
