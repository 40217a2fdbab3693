package tuneauth

import "time"

// Metric represents one append-only study measurement reported by the UI,
// e.g. how long a verification round took and whether it succeeded.
type Metric struct {
	Type      string    `json:"type"`
	Session   string    `json:"session"`
	Success   bool      `json:"success"`
	Duration  int       `json:"duration"` // milliseconds
	Timestamp time.Time `json:"timestamp"`
}
