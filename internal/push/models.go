// Package push stores Web Push subscription registrations.
package push

import "time"

// Subscription is a browser push registration: a delivery endpoint plus the
// key pair used to encrypt payloads for it. At most one live registration
// exists per endpoint; re-registration replaces the keys.
type Subscription struct {
	ID        int64
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
