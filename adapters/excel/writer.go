// Package excel exports a run as a workbook: one sheet per category plus a
// summary sheet, for people who review results in a spreadsheet rather than
// the JSON output.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"oracle/domain/report"
	"oracle/domain/simulation"
	"oracle/internal/errors"
)

var resultHeader = []string{"Simulation ID", "Hypothesis", "Outcome", "Confidence", "Priority", "Degraded"}

// WriteWorkbook renders the run into an xlsx workbook: a summary sheet from
// the aggregate plus one sheet per category with that category's full result
// list. Sheet order follows the summary's category order.
func WriteWorkbook(s *report.Summary, resultsByCategory map[string][]simulation.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildSummarySheet(f, s); err != nil {
		return nil, err
	}

	for _, cat := range s.Categories {
		if err := buildCategorySheet(f, cat.Category, resultsByCategory[cat.Category]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "serialize workbook")
	}
	return buf.Bytes(), nil
}

func buildSummarySheet(f *excelize.File, s *report.Summary) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "rename summary sheet")
	}

	rows := [][]any{
		{"Domain", s.Domain},
		{"Total simulations", s.Total},
		{"Degraded", s.Degraded},
		{"Confidence/priority correlation", s.ConfidencePriorityCorr},
		{},
		{"Category", "Total", "Positive", "Negative", "Neutral", "Degraded", "Avg confidence", "Avg priority", "P95 priority"},
	}
	for _, cat := range s.Categories {
		rows = append(rows, []any{
			cat.Category, cat.Total, cat.Positive, cat.Negative, cat.Neutral,
			cat.Degraded, cat.AvgConfidence, cat.AvgPriority, cat.P95Priority,
		})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "write summary row")
		}
	}
	return nil
}

func buildCategorySheet(f *excelize.File, category string, results []simulation.Result) error {
	sheet := sheetName(category)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "create sheet "+sheet)
	}

	header := make([]any, len(resultHeader))
	for i, h := range resultHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, r := range results {
		row := []any{string(r.SimulationID), r.Hypothesis, string(r.Outcome), r.Confidence, r.PriorityScore, r.Degraded}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "write result row")
		}
	}
	return nil
}

// Excel rejects these characters in sheet names
var sheetNameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_", ":", "_",
)

// sheetName maps a category to a legal sheet name: forbidden characters
// replaced, length capped at Excel's 31-char limit.
func sheetName(category string) string {
	if category == "" {
		return "uncategorized"
	}
	name := sheetNameReplacer.Replace(category)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// Filename returns the conventional workbook name for a domain
func Filename(domain string) string {
	return fmt.Sprintf("%s_results.xlsx", domain)
}
