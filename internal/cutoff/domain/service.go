package domain

import "context"

// Service computes eligibility over a record store snapshot.
type Service interface {
	CountEligible(ctx context.Context, q Query) (int, error)
	ComputeEligible(ctx context.Context, q Query) ([]CutoffRecord, error)
	ComputeNearMiss(ctx context.Context, q Query, eligible []CutoffRecord) ([]CutoffRecord, error)
	GroupByBranch(records []CutoffRecord) map[string][]CutoffRecord
	// Options lists the distinct courses, categories and branches of a round.
	Options(ctx context.Context, round string) (Options, error)
	// DefaultRound is the round used when a query does not name one.
	DefaultRound() string
}

// Options backs the dropdowns on the query form.
type Options struct {
	Rounds     []string `json:"rounds"`
	Courses    []string `json:"courses"`
	Categories []string `json:"categories"`
	Branches   []string `json:"branches"`
}
