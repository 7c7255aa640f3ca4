package report

import (
	"testing"

	"creditdw/ETL/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid(value float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(value), Valid: true}
}

func sampleTransformed() *models.TransformedData {
	rows := []models.ReconciledRow{
		{
			Quarter:         "2012Q3",
			CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123},
			OriginationsCnt: valid(1e6),
			OriginationAmt:  valid(5e10),
			BalanceAmt:      valid(2e11),
			PrimeRate:       valid(0.0325),
		},
		{
			Quarter:         "2012Q4",
			CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 4, QuarterKey: 20124},
			OriginationAmt:  valid(6e10),
		},
	}

	data := &models.TransformedData{
		Rows:            rows,
		SourceRowCounts: map[string]int{models.SourceOrigination: 3, models.SourceBalances: 1},
		FanOutWarnings:  []string{"фан-аут в соединении balances"},
		GrainCollisions: 1,
	}
	data.Rejects.Add(models.RejectRecord{Source: "origination", Reason: "origination_duplicate_keys"})
	data.Rejects.Add(models.RejectRecord{Source: "default_rate", Reason: models.ReasonDefaultRateOutOfRange})
	data.Rejects.Add(models.RejectRecord{Source: "origination_amt", Reason: "negative_origination_amt"})
	return data
}

func TestBuildQualitySummary(t *testing.T) {
	summary := BuildQualitySummary("run-1", sampleTransformed())

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.RowCount)
	assert.Equal(t, 3, summary.RejectCount)
	assert.Equal(t, 1, summary.GrainCollisions)
	assert.Len(t, summary.FanOutWarnings, 1)

	// Покрытие по годам и квартальным ключам
	assert.Equal(t, 2012, summary.MinYear)
	assert.Equal(t, 2012, summary.MaxYear)
	assert.Equal(t, 20123, summary.MinQuarterKey)
	assert.Equal(t, 20124, summary.MaxQuarterKey)

	// Счетчики NULL на 2 строках
	require.Len(t, summary.Measures, 6)
	assert.Equal(t, 0, summary.Measures[models.MeasureOriginationAmt].NullCount)
	assert.Equal(t, 1, summary.Measures[models.MeasureBalanceAmt].NullCount)
	assert.Equal(t, 0.5, summary.Measures[models.MeasureBalanceAmt].NullRate)
	assert.Equal(t, 2, summary.Measures[models.MeasureDefaultRate].NullCount)
	assert.Equal(t, 1.0, summary.Measures[models.MeasureDefaultRate].NullRate)

	// Нарушения из реестра раскладываются по мерам
	assert.Equal(t, 1, summary.Measures[models.MeasureDefaultRate].Violations)
	assert.Equal(t, 1, summary.Measures[models.MeasureOriginationAmt].Violations)
	assert.Equal(t, 0, summary.Measures[models.MeasurePrimeRate].Violations)

	// Дубликаты группируются по источнику
	assert.Equal(t, map[string]int{"origination": 1}, summary.DuplicateCounts)
}

func TestBuildQualitySummary_Empty(t *testing.T) {
	summary := BuildQualitySummary("run-2", &models.TransformedData{})

	assert.Equal(t, 0, summary.RowCount)
	assert.Equal(t, 0, summary.RejectCount)
	for measure, stat := range summary.Measures {
		assert.Equal(t, 0, stat.NullCount, "мера %s", measure)
		assert.Equal(t, 0.0, stat.NullRate, "мера %s", measure)
	}
}
