package transform

import (
	"testing"

	"creditdw/ETL/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillPolicy_WithinYear(t *testing.T) {
	policy := NewFillPolicy(newTestLogger(t))

	q1 := gridRow(20121)
	q1.PrimeRate = nd(0.0325)
	q2 := gridRow(20122)
	q3 := gridRow(20123)
	q3.PrimeRate = nd(0.035)
	q4 := gridRow(20124)
	rows := []models.ReconciledRow{q1, q2, q3, q4}

	filled := policy.Apply(rows)

	assert.Equal(t, 2, filled)
	require.True(t, rows[1].PrimeRate.Valid)
	assert.True(t, rows[1].PrimeRate.Decimal.Equal(decimal.NewFromFloat(0.0325)),
		"пропуск закрывается ближайшим предыдущим значением того же года")
	require.True(t, rows[3].PrimeRate.Valid)
	assert.True(t, rows[3].PrimeRate.Decimal.Equal(decimal.NewFromFloat(0.035)))
}

func TestFillPolicy_YearBoundary(t *testing.T) {
	// Q4 предыдущего года не переносится в Q1 следующего
	policy := NewFillPolicy(newTestLogger(t))

	q4 := gridRow(20124)
	q4.PrimeRate = nd(0.0325)
	next := gridRow(20131)
	rows := []models.ReconciledRow{q4, next}

	filled := policy.Apply(rows)

	assert.Equal(t, 0, filled)
	assert.False(t, rows[1].PrimeRate.Valid, "граница года сбрасывает перенос")
}

func TestFillPolicy_LeadingGapStaysNull(t *testing.T) {
	policy := NewFillPolicy(newTestLogger(t))

	q1 := gridRow(20121)
	q2 := gridRow(20122)
	q2.LendingRate = nd(0.06)
	rows := []models.ReconciledRow{q1, q2}

	filled := policy.Apply(rows)

	assert.Equal(t, 0, filled)
	assert.False(t, rows[0].LendingRate.Valid, "заполнение только вперед")
}

func TestFillPolicy_DefaultRateUntouched(t *testing.T) {
	// Ставка дефолта не является медленно меняющейся макро-ставкой
	policy := NewFillPolicy(newTestLogger(t))

	q1 := gridRow(20121)
	q1.DefaultRate = nd(0.03)
	q2 := gridRow(20122)
	rows := []models.ReconciledRow{q1, q2}

	policy.Apply(rows)

	assert.False(t, rows[1].DefaultRate.Valid)
}

func TestFillPolicy_BothMeasures(t *testing.T) {
	policy := NewFillPolicy(newTestLogger(t))

	q1 := gridRow(20121)
	q1.PrimeRate = nd(0.0325)
	q1.LendingRate = nd(0.06)
	q2 := gridRow(20122)
	rows := []models.ReconciledRow{q1, q2}

	filled := policy.Apply(rows)

	assert.Equal(t, 2, filled)
	assert.True(t, rows[1].PrimeRate.Valid)
	assert.True(t, rows[1].LendingRate.Valid)
}
