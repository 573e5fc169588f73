package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"oracle/domain/report"
	"oracle/domain/simulation"
)

func TestWriteWorkbook(t *testing.T) {
	summary := &report.Summary{
		Domain:   "business",
		Total:    2,
		Degraded: 1,
		Categories: []report.CategoryReport{
			{Category: "pricing", Total: 2, Positive: 1, Neutral: 1, Degraded: 1, AvgConfidence: 0.6, AvgPriority: 50, P95Priority: 70},
		},
	}
	results := map[string][]simulation.Result{
		"pricing": {
			{SimulationID: "ORC-BUS-PRI-0001", Hypothesis: "Annual plans cut churn.", Outcome: simulation.OutcomePositive, Confidence: 0.9, PriorityScore: 70},
			{SimulationID: "ORC-BUS-PRI-0002", Hypothesis: "Usage pricing grows ARPU.", Outcome: simulation.OutcomeNeutral, Degraded: true},
		},
	}

	raw, err := WriteWorkbook(summary, results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Summary", "pricing"}, f.GetSheetList())

	domain, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	require.Equal(t, "business", domain)

	id, err := f.GetCellValue("pricing", "A2")
	require.NoError(t, err)
	require.Equal(t, "ORC-BUS-PRI-0001", id)

	degraded, err := f.GetCellValue("pricing", "F3")
	require.NoError(t, err)
	require.Equal(t, "TRUE", degraded)
}

func TestSheetName(t *testing.T) {
	require.Equal(t, "uncategorized", sheetName(""))
	require.Equal(t, "go_to market", sheetName("go/to market"))
	require.Equal(t, "q_ a_b _c_ d_e", sheetName(`q? a\b [c] d:e`))
	long := "a-category-name-that-is-way-longer-than-excel-allows"
	require.Len(t, sheetName(long), 31)
}

func TestWriteWorkbook_CategoryWithForbiddenSheetChars(t *testing.T) {
	summary := &report.Summary{
		Domain: "business",
		Total:  1,
		Categories: []report.CategoryReport{
			{Category: "go/to market", Total: 1, Positive: 1},
		},
	}
	results := map[string][]simulation.Result{
		"go/to market": {
			{SimulationID: "ORC-BUS-GO_-0001", Hypothesis: "Channel partners scale faster.", Outcome: simulation.OutcomePositive, PriorityScore: 60},
		},
	}

	raw, err := WriteWorkbook(summary, results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "go_to market")
	hyp, err := f.GetCellValue("go_to market", "B2")
	require.NoError(t, err)
	require.Equal(t, "Channel partners scale faster.", hyp)
}

func TestFilename(t *testing.T) {
	require.Equal(t, "business_results.xlsx", Filename("business"))
}
