package models

// Usage is the memoized reachability state of a unit.
type Usage uint8

const (
	UsageUnknown Usage = iota
	// UsageComputing marks a unit that is on the evaluation stack.
	UsageComputing
	UsageUsed
	UsageUnused
)

// String returns the string representation.
func (u Usage) String() string {
	switch u {
	case UsageComputing:
		return "computing"
	case UsageUsed:
		return "used"
	case UsageUnused:
		return "unused"
	default:
		return "unknown"
	}
}

// Resolved reports whether the state is terminal.
func (u Usage) Resolved() bool {
	return u == UsageUsed || u == UsageUnused
}
