package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
)

var csvHeader = []string{"Branch", "College Code", "College Name", "Course", "Category", "Cutoff Rank"}

func (p *ReportProvider) GenerateCSV(ctx context.Context, report Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, branch := range branches(report.Grouped) {
		for _, r := range report.Grouped[branch] {
			row := []string{
				branch,
				r.CollegeCode,
				r.CollegeName,
				r.Course,
				r.Category,
				strconv.Itoa(r.CutoffRank),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
