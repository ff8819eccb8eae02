// Package provider defines the port to the upstream ATM status feed.
package provider

import "context"

// Record is one raw entry from the provider snapshot. Field values are
// kept as transmitted; normalization happens during reconciliation.
type Record struct {
	ATMID     string `json:"ATM_Id"`
	Location  string `json:"Location"`
	Parish    string `json:"Parish"`
	Deposit   string `json:"Deposit"` // "Y" / "N"
	Status    string `json:"Status"`
	LastUsed  string `json:"Last_Used"` // HH:MM:SS
	Timestamp string `json:"TimeStamp"` // YYYY-MM-DD HH:MM:SS
}

// StatusProvider fetches the current fleet snapshot from the upstream
// service. Implementations must bound the call with a timeout; a stuck
// provider is a fetch failure, never a hang.
type StatusProvider interface {
	FetchSnapshot(ctx context.Context) ([]Record, error)
}
