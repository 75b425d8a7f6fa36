package export

import (
	"context"
	"io"
	"sort"

	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
)

// Report is the unlocked result prepared for download.
type Report struct {
	Round    string
	Course   string
	Category string
	Rank     int
	Grouped  map[string][]cutoffdomain.CutoffRecord
	NearMiss []cutoffdomain.CutoffRecord
}

// Provider renders an unlocked report for download.
type Provider interface {
	GenerateCSV(ctx context.Context, report Report) ([]byte, error)
	GeneratePDF(ctx context.Context, report Report) (io.Reader, error)
}

// branches returns the group keys in ascending order so exports are stable.
func branches(grouped map[string][]cutoffdomain.CutoffRecord) []string {
	out := make([]string, 0, len(grouped))
	for branch := range grouped {
		out = append(out, branch)
	}
	sort.Strings(out)
	return out
}
