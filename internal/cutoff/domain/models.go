package domain

import (
	"errors"
	"strings"
)

// CutoffRecord is one row of admission data for one college/branch/course/
// category combination in one counselling round. The worst rank admitted last
// year; lower is more competitive.
type CutoffRecord struct {
	CollegeCode string `json:"college_code"`
	CollegeName string `json:"college_name"`
	Course      string `json:"course"`
	Category    string `json:"category"`
	Branch      string `json:"branch"`
	CutoffRank  int    `json:"cutoff_rank"`
}

// Query is the ephemeral eligibility input. Branch is an optional filter;
// an empty branch matches every branch.
type Query struct {
	Round    string `json:"round"`
	Course   string `json:"course"`
	Category string `json:"category"`
	Branch   string `json:"branch"`
	Rank     int    `json:"rank"`
}

// OtherBranch is the group key for records whose branch is empty.
const OtherBranch = "Other"

// NearMissWindow bounds how far past the student's rank a cutoff may sit and
// still count as narrowly missed.
const NearMissWindow = 2000

// Distinct-value fields exposed by the record store.
const (
	FieldCourse   = "course"
	FieldCategory = "category"
	FieldBranch   = "branch"
)

var (
	ErrMissingParameter = errors.New("missing_parameter")
	ErrInvalidRank      = errors.New("invalid_rank")
	ErrUnknownRound     = errors.New("unknown_round")
)

// Normalize applies the matching contract used everywhere: trim then lowercase.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BranchKey returns the grouping key for a record's branch.
func BranchKey(branch string) string {
	if strings.TrimSpace(branch) == "" {
		return OtherBranch
	}
	return strings.TrimSpace(branch)
}

// Key identifies a record for de-duplication between the eligible and
// near-miss lists. String fields are normalized, the rank stays exact.
type Key struct {
	CollegeCode string
	Branch      string
	CutoffRank  int
}

// KeyOf builds the composite de-duplication key for a record.
func KeyOf(r CutoffRecord) Key {
	return Key{
		CollegeCode: Normalize(r.CollegeCode),
		Branch:      Normalize(r.Branch),
		CutoffRank:  r.CutoffRank,
	}
}
