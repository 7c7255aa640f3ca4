package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*ArtifactWriter, string) {
	t.Helper()
	chdir(t, t.TempDir())
	dir := t.TempDir()
	return NewArtifactWriter(dir, utils.NewETLLogger(false)), dir
}

// chdir — замена t.Chdir для Go < 1.24: переходит в каталог и
// восстанавливает рабочий каталог по завершении теста
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestWriteQualityReport(t *testing.T) {
	writer, dir := newTestWriter(t)

	summary := BuildQualitySummary("run-7", sampleTransformed())
	path, err := writer.WriteQualityReport(summary)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quality_report_run-7.json"), path)

	// Файл запуска и файл последней сводки содержат один и тот же JSON
	perRun, err := os.ReadFile(path)
	require.NoError(t, err)
	latest, err := ReadLatestReport(dir)
	require.NoError(t, err)
	assert.Equal(t, perRun, latest)

	var decoded QualitySummary
	require.NoError(t, json.Unmarshal(latest, &decoded))
	assert.Equal(t, "run-7", decoded.RunID)
	assert.Equal(t, 2, decoded.RowCount)
}

func TestRejectLedgerRoundTrip(t *testing.T) {
	writer, _ := newTestWriter(t)

	var ledger models.RejectLedger
	ledger.Add(models.RejectRecord{
		Source: "balances", Reason: "balances_duplicate_keys",
		Quarter: "2012Q3", Year: 2012, QuarterKey: 20123, Value: "200",
	})
	ledger.Add(models.RejectRecord{
		Source: "default_rate", Reason: models.ReasonDefaultRateOutOfRange,
		Quarter: "2012Q4", Year: 2012, QuarterKey: 20124, Value: "1.5",
	})

	path, err := writer.WriteRejectLedger("run-7", &ledger)
	require.NoError(t, err)
	assert.Equal(t, ".snappy", filepath.Ext(path))

	restored, err := ReadRejectLedger(path)
	require.NoError(t, err)
	require.Equal(t, ledger.Count(), restored.Count())
	assert.Equal(t, ledger.Records, restored.Records)
}

func TestReadRejectLedger_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reject_ledger_bad.json.snappy")
	require.NoError(t, os.WriteFile(path, []byte("не snappy"), 0644))

	_, err := ReadRejectLedger(path)
	assert.Error(t, err)
}

func TestReadLatestReport_Missing(t *testing.T) {
	_, err := ReadLatestReport(t.TempDir())
	assert.Error(t, err)
}
