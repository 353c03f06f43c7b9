package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

func fixedExporter(dir string) *Exporter {
	e := NewExporter(dir)
	e.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 45, 0, time.UTC)
	}
	return e
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Records: []domain.CarbonRecord{
			{
				Provider:              "Azure",
				Date:                  "2025-03-01",
				Service:               "microsoft.compute/virtualmachines",
				ResourceName:          "vm-prod-01",
				AccountID:             "sub-a",
				AccountName:           "Production",
				CarbonEmissionsKg:     1500,
				CarbonEmissionsTonnes: 1.5,
				Currency:              "USD",
				ReportType:            domain.ReportItemDetails,
				DataType:              "ResourceItemDetailsData",
			},
		},
		Stats: domain.SummaryStats{
			TotalRecords:      1,
			TotalCarbonTonnes: 1.5,
			TotalCarbonKg:     1500,
			DateRangeStart:    "2025-03-01",
			DateRangeEnd:      "2025-03-01",
			GeneratedAt:       time.Date(2025, 6, 15, 10, 30, 45, 0, time.UTC),
			APIVersion:        "2025-04-01",
			ReportType:        domain.ReportItemDetails,
		},
		Accounts: []domain.AccountResult{
			{
				Account: domain.Account{ID: "sub-a", DisplayName: "Production", State: domain.AccountStateEnabled},
				Status:  domain.AccountSucceeded,
				Records: 1,
			},
		},
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	files, err := fixedExporter(dir).Export(sampleResult())
	require.NoError(t, err)

	assert.Equal(t,
		filepath.Join(dir, "azure_carbon_emissions_itemdetailsreport_20250615_103045.csv"),
		files.RecordsCSV)
	assert.Equal(t,
		filepath.Join(dir, "azure_carbon_emissions_itemdetailsreport_20250615_103045_summary.json"),
		files.SummaryJSON)

	csvFile, err := os.Open(files.RecordsCSV)
	require.NoError(t, err)
	defer csvFile.Close()

	rows, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "vm-prod-01", rows[1][3])
	assert.Equal(t, "1500", rows[1][10])
	assert.Equal(t, "1.5", rows[1][11])

	payload, err := os.ReadFile(files.SummaryJSON)
	require.NoError(t, err)

	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &document))
	require.Contains(t, document, "summary")
	require.Contains(t, document, "accounts")

	var summary map[string]any
	require.NoError(t, json.Unmarshal(document["summary"], &summary))
	assert.Equal(t, float64(1), summary["total_records"])
	assert.Equal(t, "2025-04-01", summary["api_version"])
}

func TestExport_EmptyRun(t *testing.T) {
	dir := t.TempDir()

	// A run with zero records still writes both files; the summary keeps the
	// per-account outcomes for troubleshooting.
	result := sampleResult()
	result.Records = nil
	result.Stats.TotalRecords = 0
	result.Accounts[0].Status = domain.AccountDenied
	result.Accounts[0].Reason = "missing role assignment"

	files, err := fixedExporter(dir).Export(result)
	require.NoError(t, err)

	rows, err := readCSVFile(t, files.RecordsCSV)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")

	payload, err := os.ReadFile(files.SummaryJSON)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "missing role assignment")
}

func TestExport_CreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	_, err := fixedExporter(dir).Export(sampleResult())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func readCSVFile(t *testing.T, path string) ([][]string, error) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return csv.NewReader(file).ReadAll()
}
