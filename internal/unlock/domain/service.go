package domain

import (
	"context"

	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
)

// Result is the detailed eligibility output revealed after payment.
type Result struct {
	Round           string                                   `json:"round"`
	EligibleCount   int                                      `json:"eligible_count"`
	GroupedEligible map[string][]cutoffdomain.CutoffRecord   `json:"grouped_eligible"`
	NearMiss        []cutoffdomain.CutoffRecord              `json:"near_miss"`
}

// Service gates the detailed result behind payment confirmation. Unlock is
// repeatable for a paid order; it never consumes or mutates anything.
type Service interface {
	Unlock(ctx context.Context, q cutoffdomain.Query, orderID string) (Result, error)
}
