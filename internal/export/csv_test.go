package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
	"github.com/flexiworks/cetpredict/internal/export"
)

func sampleReport() export.Report {
	return export.Report{
		Round:    "Round 1",
		Course:   "B.E.",
		Category: "GM",
		Rank:     6000,
		Grouped: map[string][]cutoffdomain.CutoffRecord{
			"EC": {
				{CollegeCode: "E002", CollegeName: "Beta College", Course: "B.E.", Category: "GM", Branch: "EC", CutoffRank: 7000},
			},
			"CS": {
				{CollegeCode: "E001", CollegeName: "Alpha Institute", Course: "B.E.", Category: "GM", Branch: "CS", CutoffRank: 8000},
				{CollegeCode: "E003", CollegeName: "Gamma College", Course: "B.E.", Category: "GM", Branch: "CS", CutoffRank: 9500},
			},
			cutoffdomain.OtherBranch: {
				{CollegeCode: "E005", CollegeName: "Epsilon College", Course: "B.E.", Category: "GM", CutoffRank: 12000},
			},
		},
		NearMiss: []cutoffdomain.CutoffRecord{
			{CollegeCode: "E004", CollegeName: "Delta College", Course: "B.E.", Category: "GM", Branch: "ME", CutoffRank: 5500},
		},
	}
}

func TestGenerateCSVOrdersBranchesAndRows(t *testing.T) {
	p := export.NewReportProvider()

	out, err := p.GenerateCSV(context.Background(), sampleReport())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Branch", "College Code", "College Name", "Course", "Category", "Cutoff Rank"}, rows[0])

	// Branches alphabetically, rows preserving their group order.
	assert.Equal(t, []string{"CS", "E001", "Alpha Institute", "B.E.", "GM", "8000"}, rows[1])
	assert.Equal(t, []string{"CS", "E003", "Gamma College", "B.E.", "GM", "9500"}, rows[2])
	assert.Equal(t, []string{"EC", "E002", "Beta College", "B.E.", "GM", "7000"}, rows[3])
	assert.Equal(t, []string{"Other", "E005", "Epsilon College", "B.E.", "GM", "12000"}, rows[4])
}

func TestGenerateCSVEmptyReport(t *testing.T) {
	p := export.NewReportProvider()

	out, err := p.GenerateCSV(context.Background(), export.Report{Round: "Round 1"})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Branch", rows[0][0])
}

func TestGeneratePDFProducesDocument(t *testing.T) {
	p := export.NewReportProvider()

	r, err := p.GeneratePDF(context.Background(), sampleReport())
	require.NoError(t, err)

	doc, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}
