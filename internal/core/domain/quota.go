package domain

import "time"

// Quota is one rate limit window of a forge API.
type Quota struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}
