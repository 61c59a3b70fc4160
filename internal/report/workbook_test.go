package report

import (
	"bytes"
	"testing"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func intPtr(v int) *int { return &v }

func detailFixture() *models.DetailedData {
	return &models.DetailedData{
		Columns: []string{"CTU_ID", "First_Name", "Status"},
		Rows: []models.DetailedRow{
			{"CTU_ID": "1001", "First_Name": "Ana", "Status": "employed"},
			{"CTU_ID": "1001", "First_Name": "Ana", "Status": "employed"},
			{"CTU_ID": "1002", "First_Name": "Ben", "Status": ""},
			{"CTU_ID": "1002", "First_Name": "Ben"},
			{"CTU_ID": "1003", "First_Name": "Cy", "Status": "unemployed"},
		},
	}
}

func TestDedupRows(t *testing.T) {
	d := detailFixture()

	got := DedupRows(d.Columns, d.Rows)

	require.Len(t, got, 3)
	assert.Equal(t, "1001", got[0]["CTU_ID"])
	assert.Equal(t, "1002", got[1]["CTU_ID"])
	assert.Equal(t, "1003", got[2]["CTU_ID"])
}

func TestSummaryRows_SkipsMissingFields(t *testing.T) {
	rate := 60.0
	snap := &models.StatsSnapshot{
		Type:           models.StatsQPRO,
		TotalAlumni:    10,
		EmployedCount:  intPtr(6),
		EmploymentRate: &rate,
	}

	rows := SummaryRows(snap)

	assert.Equal(t, [2]string{"Year", "ALL"}, rows[1])
	assert.Contains(t, rows, [2]string{"Employed", "6"})
	assert.Contains(t, rows, [2]string{"Employment Rate (%)", "60.00"})
	for _, r := range rows {
		assert.NotEqual(t, "Absorbed", r[0])
	}
}

func TestExportWorkbook(t *testing.T) {
	stats := map[models.StatsType]*models.StatsSnapshot{
		models.StatsQPRO:  {Type: models.StatsQPRO, TotalAlumni: 3, EmployedCount: intPtr(1), UnemployedCount: intPtr(1)},
		models.StatsAACUP: {Type: models.StatsAACUP, TotalAlumni: 3, EmployedCount: intPtr(1)},
	}
	detail := detailFixture()
	detailed := map[models.StatsType]*models.DetailedData{
		models.StatsQPRO:  detail,
		models.StatsAACUP: detail,
	}

	data, err := ExportWorkbook(stats, detailed)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"QPRO", "QPRO Details", "AACUP", "AACUP Details"}, f.GetSheetList())

	rows, err := f.GetRows("QPRO Details")
	require.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3 unique rows
	assert.Equal(t, []string{"CTU_ID", "First_Name", "Status"}, rows[0])

	title, err := f.GetCellValue("QPRO", "A1")
	require.NoError(t, err)
	assert.Equal(t, "QPRO Statistics", title)

	pics, err := f.GetPictures("QPRO", barAnchor)
	require.NoError(t, err)
	assert.Len(t, pics, 1)
}

func TestExportWorkbook_KeepDuplicates(t *testing.T) {
	stats := map[models.StatsType]*models.StatsSnapshot{
		models.StatsSUC: {Type: models.StatsSUC, TotalAlumni: 5, HighPositionCount: intPtr(2)},
	}
	detailed := map[models.StatsType]*models.DetailedData{models.StatsSUC: detailFixture()}

	data, err := ExportWorkbookWithOptions(stats, detailed, WorkbookOptions{KeepDuplicateRespondents: true})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("SUC Details")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestExportWorkbook_Empty(t *testing.T) {
	_, err := ExportWorkbook(nil, nil)
	assert.Error(t, err)
}
