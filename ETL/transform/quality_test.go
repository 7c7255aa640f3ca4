package transform

import (
	"testing"

	"creditdw/ETL/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridRow(quarterKey int) models.ReconciledRow {
	return models.ReconciledRow{
		Quarter: "2012Q3",
		CalendarQuarter: models.CalendarQuarter{
			Year: quarterKey / 10, QuarterNum: quarterKey % 10, QuarterKey: quarterKey,
		},
	}
}

func TestQualityGate_DefaultRateRange(t *testing.T) {
	tests := []struct {
		name       string
		rate       float64
		wantNulled bool
	}{
		{name: "процент вместо доли", rate: 1.5, wantNulled: true},
		{name: "отрицательная ставка", rate: -0.01, wantNulled: true},
		{name: "нормальная доля", rate: 0.031, wantNulled: false},
		{name: "нижняя граница", rate: 0, wantNulled: false},
		{name: "верхняя граница", rate: 1, wantNulled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewQualityGate(newTestLogger(t))
			row := gridRow(20123)
			row.DefaultRate = nd(tt.rate)
			rows := []models.ReconciledRow{row}

			var ledger models.RejectLedger
			violations := gate.Apply(rows, &ledger)

			if tt.wantNulled {
				assert.Equal(t, 1, violations)
				assert.False(t, rows[0].DefaultRate.Valid, "значение вне [0, 1] обнуляется")
				require.Equal(t, 1, ledger.Count())
				assert.Equal(t, models.ReasonDefaultRateOutOfRange, ledger.Records[0].Reason)
				assert.Equal(t, 20123, ledger.Records[0].QuarterKey)
			} else {
				assert.Equal(t, 0, violations)
				assert.True(t, rows[0].DefaultRate.Valid)
				assert.Equal(t, 0, ledger.Count())
			}
		})
	}
}

func TestQualityGate_SignRule(t *testing.T) {
	gate := NewQualityGate(newTestLogger(t))

	row := gridRow(20123)
	row.OriginationAmt = nd(-500)
	row.OriginationsCnt = nd(-3)
	row.BalanceAmt = nd(2e11)
	rows := []models.ReconciledRow{row}

	var ledger models.RejectLedger
	violations := gate.Apply(rows, &ledger)

	assert.Equal(t, 2, violations)
	assert.False(t, rows[0].OriginationAmt.Valid)
	assert.False(t, rows[0].OriginationsCnt.Valid)
	assert.True(t, rows[0].BalanceAmt.Valid, "строка сохраняется, обнуляются только нарушители")

	byReason := ledger.CountByReason()
	assert.Equal(t, 1, byReason["negative_origination_amt"])
	assert.Equal(t, 1, byReason["negative_originations_cnt"])
}

func TestQualityGate_NullsUntouched(t *testing.T) {
	gate := NewQualityGate(newTestLogger(t))
	rows := []models.ReconciledRow{gridRow(20123)}

	var ledger models.RejectLedger
	violations := gate.Apply(rows, &ledger)

	assert.Equal(t, 0, violations)
	assert.Equal(t, 0, ledger.Count())
}

func TestQualityGate_RejectValueRecorded(t *testing.T) {
	gate := NewQualityGate(newTestLogger(t))
	row := gridRow(20124)
	row.OriginationAmt = decimal.NullDecimal{Decimal: decimal.NewFromInt(-500), Valid: true}
	rows := []models.ReconciledRow{row}

	var ledger models.RejectLedger
	gate.Apply(rows, &ledger)

	require.Equal(t, 1, ledger.Count())
	assert.Equal(t, "-500", ledger.Records[0].Value)
	assert.Equal(t, models.MeasureOriginationAmt, ledger.Records[0].Source)
}
