package atm

// Status represents the operational state reported by the provider
type Status string

const (
	StatusWorking Status = "WORKING"
	StatusDown    Status = "DOWN"
	StatusUnknown Status = "UNKNOWN"
)

// ParseStatus normalizes a raw provider status string. Empty and
// unrecognized values map to StatusUnknown rather than failing.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusWorking, StatusDown, StatusUnknown:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusWorking, StatusDown, StatusUnknown:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}
