package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/xuri/excelize/v2"
)

// WorkbookOptions tunes ExportWorkbook.
type WorkbookOptions struct {
	// KeepDuplicateRespondents writes every detail row, even when two rows
	// render identically.
	KeepDuplicateRespondents bool
}

const (
	barAnchor      = "D2"
	pieAnchor      = "N2"
	chartRowsSpan  = 24
	defaultSheet   = "Sheet1"
	detailsSuffix  = " Details"
	maxSheetLength = 31
)

// ExportWorkbook builds one workbook with a sheet per statistics type and a
// "<TYPE> Details" sheet for its detail rows. Any failure aborts the export.
func ExportWorkbook(statsByType map[models.StatsType]*models.StatsSnapshot, detailedByType map[models.StatsType]*models.DetailedData) ([]byte, error) {
	return ExportWorkbookWithOptions(statsByType, detailedByType, WorkbookOptions{})
}

func ExportWorkbookWithOptions(statsByType map[models.StatsType]*models.StatsSnapshot, detailedByType map[models.StatsType]*models.DetailedData, opts WorkbookOptions) ([]byte, error) {
	types := OrderedTypes(statsByType)
	if len(types) == 0 {
		return nil, fmt.Errorf("no statistics to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range types {
		sheet := sheetName(string(t))
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		charts, err := RenderCharts(t, statsByType[t])
		if err != nil {
			return nil, err
		}
		detail := detailedByType[t]
		var rows []models.DetailedRow
		var columns []string
		if detail != nil {
			columns = detail.Columns
			rows = detail.Rows
			if !opts.KeepDuplicateRespondents {
				rows = DedupRows(columns, rows)
			}
		}

		if err := writeTypeSheet(f, sheet, t, statsByType[t], charts, columns, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s sheet: %w", t, err)
		}

		detailsSheet := sheetName(string(t) + detailsSuffix)
		if _, err := f.NewSheet(detailsSheet); err != nil {
			return nil, err
		}
		if _, err := writeTable(f, detailsSheet, 1, columns, rows); err != nil {
			return nil, fmt.Errorf("failed to write %s details: %w", t, err)
		}
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTypeSheet(f *excelize.File, sheet string, t models.StatsType, snap *models.StatsSnapshot, charts *ChartSet, columns []string, rows []models.DetailedRow) error {
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s Statistics", t)); err != nil {
		return err
	}
	row := 2
	for _, kv := range SummaryRows(snap) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{kv[0], kv[1]}); err != nil {
			return err
		}
		row++
	}

	for anchor, png := range map[string][]byte{barAnchor: charts.Bar.PNG, pieAnchor: charts.Pie.PNG} {
		if err := f.AddPictureFromBytes(sheet, anchor, &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format:    &excelize.GraphicOptions{ScaleX: 0.75, ScaleY: 0.75},
		}); err != nil {
			return fmt.Errorf("failed to embed chart: %w", err)
		}
	}

	start := row + 1
	if start < chartRowsSpan+2 {
		start = chartRowsSpan + 2
	}
	if len(columns) == 0 {
		return nil
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", start), "Detailed Data"); err != nil {
		return err
	}
	_, err := writeTable(f, sheet, start+1, columns, rows)
	return err
}

// writeTable writes a header row and one row per record starting at row
// first. It returns the next free row.
func writeTable(f *excelize.File, sheet string, first int, columns []string, rows []models.DetailedRow) (int, error) {
	if len(columns) == 0 {
		return first, nil
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	cell, _ := excelize.CoordinatesToCellName(1, first)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return first, err
	}

	r := first + 1
	for _, row := range rows {
		values := make([]interface{}, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return r, err
		}
		r++
	}
	return r, nil
}

// DedupRows drops rows whose rendered non-empty values repeat an earlier row.
func DedupRows(columns []string, rows []models.DetailedRow) []models.DetailedRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.DetailedRow, 0, len(rows))
	for _, row := range rows {
		key := rowKey(columns, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func rowKey(columns []string, row models.DetailedRow) string {
	var b strings.Builder
	for _, c := range columns {
		v := row[c]
		if v == "" {
			continue
		}
		b.WriteString(c)
		b.WriteByte('\x1f')
		b.WriteString(v)
		b.WriteByte('\x1e')
	}
	return b.String()
}

// SummaryRows lists the label/value pairs a snapshot carries, in a fixed
// order. Nil fields are skipped.
func SummaryRows(snap *models.StatsSnapshot) [][2]string {
	if snap == nil {
		return nil
	}
	rows := [][2]string{
		{"Type", string(snap.Type)},
		{"Year", orAll(snap.Year)},
		{"Course", orAll(snap.Course)},
		{"Total Alumni", strconv.Itoa(snap.TotalAlumni)},
	}
	ints := []struct {
		label string
		v     *int
	}{
		{"Employed", snap.EmployedCount},
		{"Unemployed", snap.UnemployedCount},
		{"Absorbed", snap.AbsorbedCount},
		{"High Position", snap.HighPositionCount},
		{"Pursuing Further Study", snap.PursuingFurtherStudy},
		{"Post Graduate Degree", snap.PostGraduateDegree},
	}
	for _, it := range ints {
		if it.v != nil {
			rows = append(rows, [2]string{it.label, strconv.Itoa(*it.v)})
		}
	}
	rates := []struct {
		label string
		v     *float64
	}{
		{"Employment Rate (%)", snap.EmploymentRate},
		{"Absorption Rate (%)", snap.AbsorptionRate},
		{"High Position Rate (%)", snap.HighPositionRate},
		{"Further Study Rate (%)", snap.FurtherStudyRate},
		{"Average Salary", snap.AverageSalary},
		{"Average Age", snap.AverageAge},
	}
	for _, it := range rates {
		if it.v != nil {
			rows = append(rows, [2]string{it.label, strconv.FormatFloat(*it.v, 'f', 2, 64)})
		}
	}

	keys := make([]string, 0, len(snap.StatusCounts))
	for k := range snap.StatusCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "Unspecified"
		}
		rows = append(rows, [2]string{"Status: " + label, strconv.Itoa(snap.StatusCounts[k])})
	}

	strs := []struct {
		label string
		v     *string
	}{
		{"Most Common Company", snap.MostCommonCompany},
		{"Most Common Position", snap.MostCommonPosition},
		{"Most Common Sector", snap.MostCommonSector},
		{"Most Common Awards", snap.MostCommonAwards},
		{"Most Common School", snap.MostCommonSchool},
		{"Most Common Program", snap.MostCommonProgram},
		{"Most Common Unemployment Reason", snap.MostCommonUnemploymentReason},
		{"Most Common Civil Status", snap.MostCommonCivilStatus},
		{"Sample Email", snap.SampleEmail},
	}
	for _, it := range strs {
		if it.v != nil {
			rows = append(rows, [2]string{it.label, *it.v})
		}
	}
	return rows
}

// OrderedTypes returns the fixed types first, in their canonical order.
func OrderedTypes(statsByType map[models.StatsType]*models.StatsSnapshot) []models.StatsType {
	out := make([]models.StatsType, 0, len(statsByType))
	for _, t := range models.FixedStatsTypes {
		if _, ok := statsByType[t]; ok {
			out = append(out, t)
		}
	}
	var rest []models.StatsType
	for t := range statsByType {
		if !isFixed(t) {
			rest = append(rest, t)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

func isFixed(t models.StatsType) bool {
	for _, f := range models.FixedStatsTypes {
		if f == t {
			return true
		}
	}
	return false
}

func sheetName(s string) string {
	if len(s) > maxSheetLength {
		return s[:maxSheetLength]
	}
	return s
}

func orAll(s string) string {
	if strings.TrimSpace(s) == "" {
		return "ALL"
	}
	return s
}
