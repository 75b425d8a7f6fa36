package domain

// Repository is the read-only record store. All methods are safe for
// concurrent use once loading has finished.
type Repository interface {
	// Rounds lists the configured round names in configuration order.
	Rounds() []string
	// HasRound reports whether the round name was configured, regardless of
	// whether its source loaded any records.
	HasRound(round string) bool
	// AllRecords returns the full sequence for a round in source order.
	// Unconfigured rounds yield an empty sequence.
	AllRecords(round string) []CutoffRecord
	// ListDistinct returns the sorted distinct non-empty values of a field.
	ListDistinct(round, field string) []string
}
