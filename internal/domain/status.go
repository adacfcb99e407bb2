package domain

// Status is the category tag a token belongs to for its whole lifetime.
type Status string

const (
	StatusNewPairs     Status = "new_pairs"
	StatusFinalStretch Status = "final_stretch"
	StatusMigrated     Status = "migrated"
)

// Statuses lists every category in generation order (index i mod 3).
var Statuses = []Status{StatusNewPairs, StatusFinalStretch, StatusMigrated}

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known category.
func (s Status) IsValid() bool {
	return s == StatusNewPairs || s == StatusFinalStretch || s == StatusMigrated
}

// DisplayName returns the human readable column title.
func (s Status) DisplayName() string {
	switch s {
	case StatusNewPairs:
		return "New Pairs"
	case StatusFinalStretch:
		return "Final Stretch"
	case StatusMigrated:
		return "Migrated"
	default:
		return string(s)
	}
}

// ParseStatus converts a raw category key into a Status.
// Returns ErrUnknownStatus for anything outside the fixed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}
