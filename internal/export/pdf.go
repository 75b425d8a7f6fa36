package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReportProvider renders unlocked reports as CSV and PDF downloads.
type ReportProvider struct{}

func NewReportProvider() Provider {
	return &ReportProvider{}
}

func (p *ReportProvider) GeneratePDF(ctx context.Context, report Report) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(18,
		text.NewCol(12, "Eligible Colleges Report", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(12).Add(
			text.New("Round: "+report.Round, props.Text{Top: 0, Size: 10}),
			text.New(fmt.Sprintf("Course: %s  |  Category: %s  |  Rank: %d", report.Course, report.Category, report.Rank), props.Text{Top: 5, Size: 10}),
		),
	)

	for _, branch := range branches(report.Grouped) {
		m.AddRow(12,
			text.NewCol(12, branch, props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Top:   3,
			}),
		)

		m.AddRow(8,
			text.NewCol(2, "Code", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(6, "College", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(2, "Category", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(2, "Cutoff Rank", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		)

		for _, r := range report.Grouped[branch] {
			m.AddRow(7,
				text.NewCol(2, r.CollegeCode, props.Text{Size: 9}),
				text.NewCol(6, r.CollegeName, props.Text{Size: 9}),
				text.NewCol(2, r.Category, props.Text{Size: 9}),
				text.NewCol(2, fmt.Sprintf("%d", r.CutoffRank), props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	if len(report.NearMiss) > 0 {
		m.AddRow(12,
			text.NewCol(12, "Near Miss (within 2000 ranks)", props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Top:   3,
			}),
		)
		for _, r := range report.NearMiss {
			m.AddRow(7,
				text.NewCol(2, r.CollegeCode, props.Text{Size: 9}),
				text.NewCol(6, r.CollegeName, props.Text{Size: 9}),
				text.NewCol(2, r.Branch, props.Text{Size: 9}),
				text.NewCol(2, fmt.Sprintf("%d", r.CutoffRank), props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
