package geocoding

import "time"

// MaxRetries caps how often a failed geocode is re-attempted by the
// sweep. Entries at the cap stay in the ledger as a durable record but
// are excluded from sweeps until manually cleared.
const MaxRetries = 3

// FailureEntry records one unresolvable (place, parish) pair, keyed by
// the ATM it belongs to.
type FailureEntry struct {
	ATMID        string
	Location     string
	Parish       string
	ErrorMessage string
	RetryCount   int
	LastRetry    time.Time
	CreatedAt    time.Time
}

// NewFailureEntry creates a ledger entry for a first-time failure
func NewFailureEntry(atmID, location, parish, errMsg string) *FailureEntry {
	now := time.Now()
	return &FailureEntry{
		ATMID:        atmID,
		Location:     location,
		Parish:       parish,
		ErrorMessage: errMsg,
		RetryCount:   1,
		LastRetry:    now,
		CreatedAt:    now,
	}
}

// MarkRetried increments the retry count and replaces the error context
func (f *FailureEntry) MarkRetried(errMsg string) {
	f.RetryCount++
	f.ErrorMessage = errMsg
	f.LastRetry = time.Now()
}

// Retryable reports whether the entry is still inside the retry budget
func (f *FailureEntry) Retryable() bool {
	return f.RetryCount < MaxRetries
}
