package transform

import (
	"os"
	"testing"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLogger создает логгер во временном каталоге, чтобы не засорять
// рабочий каталог лог-файлами тестов
func newTestLogger(t *testing.T) *utils.ETLLogger {
	t.Helper()
	chdir(t, t.TempDir())
	return utils.NewETLLogger(false)
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

func nd(value float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(value), Valid: true}
}

func tokenSeries(name string, points ...models.SeriesPoint) models.SourceSeries {
	return models.SourceSeries{Name: name, Grain: models.GrainQuarterToken, Points: points}
}

func tokenPoint(quarter string, value float64) models.SeriesPoint {
	return models.SeriesPoint{Quarter: quarter, Value: nd(value)}
}

func TestMergeSources_EndToEnd(t *testing.T) {
	// Сценарий с тремя поверхностными формами одного квартала: выдачи приходят
	// с токеном '2012Q3', балансы с токеном '2012 Q3', ставки отсутствуют
	data := &models.ExtractedData{
		OriginationAmt:  tokenSeries(models.SourceOrigination, tokenPoint("2012Q3", 5e10)),
		OriginationsCnt: tokenSeries(models.SourceOriginationsCnt, tokenPoint("2012Q3", 1e6)),
		Balances:        tokenSeries(models.SourceBalances, tokenPoint("2012 Q3", 2e11)),
	}

	var ledger models.RejectLedger
	rows, warnings := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, ledger.Count())

	row := rows[0]
	assert.Equal(t, 20123, row.QuarterKey)
	assert.Equal(t, 2012, row.Year)
	assert.Equal(t, 3, row.QuarterNum)

	require.True(t, row.OriginationsCnt.Valid)
	assert.True(t, row.OriginationsCnt.Decimal.Equal(decimal.NewFromFloat(1e6)))
	require.True(t, row.OriginationAmt.Valid)
	assert.True(t, row.OriginationAmt.Decimal.Equal(decimal.NewFromFloat(5e10)))
	require.True(t, row.BalanceAmt.Valid)
	assert.True(t, row.BalanceAmt.Decimal.Equal(decimal.NewFromFloat(2e11)))

	assert.False(t, row.DefaultRate.Valid)
	assert.False(t, row.PrimeRate.Valid)
	assert.False(t, row.LendingRate.Valid)
}

func TestDedupeSeries_FirstWins(t *testing.T) {
	// Дубликат после нормализации токена: '2012 q3' совпадает с '2012Q3'
	series := normalizeTokenSeries(tokenSeries(models.SourceOrigination,
		tokenPoint("2012Q3", 100),
		tokenPoint("2012 q3", 200),
		tokenPoint("2012Q4", 300),
	))

	var ledger models.RejectLedger
	deduped := dedupeSeries(series, &ledger)

	require.Len(t, deduped.Points, 2)
	assert.True(t, deduped.Points[0].Value.Decimal.Equal(decimal.NewFromInt(100)),
		"сохраняется первое вхождение")
	assert.Equal(t, "2012Q4", deduped.Points[1].Quarter)

	require.Equal(t, 1, ledger.Count())
	rec := ledger.Records[0]
	assert.Equal(t, "origination_duplicate_keys", rec.Reason)
	assert.Equal(t, "2012Q3", rec.Quarter)
	assert.Equal(t, "200", rec.Value)
}

func TestMergeSources_SpineSemantics(t *testing.T) {
	// Опорная серия определяет сетку: квартал, присутствующий только
	// в балансах, отбрасывается; квартал без баланса остается с NULL
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2012Q3", 5e10),
			tokenPoint("2012Q4", 6e10),
		),
		Balances: tokenSeries(models.SourceBalances,
			tokenPoint("2012Q3", 2e11),
			tokenPoint("2013Q1", 9e11),
		),
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 2)
	assert.Equal(t, 20123, rows[0].QuarterKey)
	assert.True(t, rows[0].BalanceAmt.Valid)
	assert.Equal(t, 20124, rows[1].QuarterKey)
	assert.False(t, rows[1].BalanceAmt.Valid)
}

func TestMergeSources_UnparseableTokensDropped(t *testing.T) {
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2012Q3", 5e10),
			tokenPoint("Annual Total", 7e10),
			tokenPoint("", 8e10),
		),
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 1)
	assert.Equal(t, 20123, rows[0].QuarterKey)
	assert.Equal(t, 0, ledger.Count(), "нераспознаваемые токены отбрасываются молча")
}

func TestMergeSources_QuarterlyDefaultRate(t *testing.T) {
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2012Q2", 1e10),
			tokenPoint("2012Q3", 2e10),
		),
		DefaultRate: models.DefaultRateSource{
			Kind: models.DefaultRateQuarterly,
			Series: models.SourceSeries{
				Name:  models.SourceDefaultRateQ,
				Grain: models.GrainYearQuarter,
				Points: []models.SeriesPoint{
					{Year: 2012, QuarterNum: 3, Value: nd(0.024)},
				},
			},
		},
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 2)
	assert.False(t, rows[0].DefaultRate.Valid)
	require.True(t, rows[1].DefaultRate.Valid)
	assert.True(t, rows[1].DefaultRate.Decimal.Equal(decimal.NewFromFloat(0.024)))
}

func TestMergeSources_YearlyRatesReplicated(t *testing.T) {
	// Годовые серии тиражируются на все кварталы года
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2012Q1", 1e10),
			tokenPoint("2012Q2", 2e10),
			tokenPoint("2012Q3", 3e10),
			tokenPoint("2012Q4", 4e10),
			tokenPoint("2013Q1", 5e10),
		),
		DefaultRate: models.DefaultRateSource{
			Kind: models.DefaultRateYearly,
			Series: models.SourceSeries{
				Name:  models.SourceDefaultRateY,
				Grain: models.GrainYear,
				Points: []models.SeriesPoint{
					{Year: 2012, Value: nd(0.031)},
				},
			},
		},
		LendingRate: models.SourceSeries{
			Name:  models.SourceLendingRate,
			Grain: models.GrainYear,
			Points: []models.SeriesPoint{
				{Year: 2012, Value: nd(0.0635)},
			},
		},
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 5)
	for _, row := range rows[:4] {
		require.True(t, row.DefaultRate.Valid, "квартал %s", row.Quarter)
		assert.True(t, row.DefaultRate.Decimal.Equal(decimal.NewFromFloat(0.031)))
		require.True(t, row.LendingRate.Valid, "квартал %s", row.Quarter)
		assert.True(t, row.LendingRate.Decimal.Equal(decimal.NewFromFloat(0.0635)))
	}
	assert.False(t, rows[4].DefaultRate.Valid, "соседний год не затрагивается")
	assert.False(t, rows[4].LendingRate.Valid)
}

func TestMergeSources_PrimeRateByQuarterKey(t *testing.T) {
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2012Q3", 1e10),
			tokenPoint("2012Q4", 2e10),
		),
		PrimeRate: models.SourceSeries{
			Name:  models.SourcePrimeRate,
			Grain: models.GrainQuarterKey,
			Points: []models.SeriesPoint{
				{QuarterKey: 20123, Value: nd(0.0325)},
			},
		},
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 2)
	require.True(t, rows[0].PrimeRate.Valid)
	assert.True(t, rows[0].PrimeRate.Decimal.Equal(decimal.NewFromFloat(0.0325)))
	assert.False(t, rows[1].PrimeRate.Valid)
}

func TestLeftJoin_FanOutGuard(t *testing.T) {
	// Недедуплицированная серия с неуникальным ключом: предупреждение
	// выдается, но количество строк сетки не меняется и берется первое значение
	rows := []models.ReconciledRow{
		{Quarter: "2012Q3", CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123}},
	}
	series := tokenSeries(models.SourceBalances,
		tokenPoint("2012Q3", 100),
		tokenPoint("2012Q3", 200),
	)

	warning := leftJoin(rows, series, 0.01, func(r *models.ReconciledRow, v decimal.NullDecimal) {
		r.BalanceAmt = v
	})

	assert.NotEmpty(t, warning)
	assert.Contains(t, warning, models.SourceBalances)
	require.Len(t, rows, 1)
	require.True(t, rows[0].BalanceAmt.Valid)
	assert.True(t, rows[0].BalanceAmt.Decimal.Equal(decimal.NewFromInt(100)))
}

func TestMergeSources_StableOrdering(t *testing.T) {
	data := &models.ExtractedData{
		OriginationAmt: tokenSeries(models.SourceOrigination,
			tokenPoint("2013Q1", 1),
			tokenPoint("2012Q4", 2),
			tokenPoint("2012Q2", 3),
		),
	}

	var ledger models.RejectLedger
	rows, _ := mergeSources(data, 0.01, &ledger)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{20122, 20124, 20131},
		[]int{rows[0].QuarterKey, rows[1].QuarterKey, rows[2].QuarterKey})
}

func TestFinalGrainDedupe(t *testing.T) {
	rows := []models.ReconciledRow{
		{Quarter: "2012Q3", CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123}},
		{Quarter: "2012Q3", CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123}},
		{Quarter: "2012Q4", CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 4, QuarterKey: 20124}},
	}

	var ledger models.RejectLedger
	deduped, collisions := finalGrainDedupe(rows, &ledger)

	require.Len(t, deduped, 2)
	assert.Equal(t, 1, collisions)
	require.Equal(t, 1, ledger.Count())
	assert.Equal(t, models.ReasonFactGrainDuplicate, ledger.Records[0].Reason)
	assert.Equal(t, 20123, ledger.Records[0].QuarterKey)
}

func TestTransformer_Deterministic(t *testing.T) {
	// Два прогона на неизменных входах дают одинаковый результат
	logger := newTestLogger(t)
	transformer := NewTransformer(logger, 0.01)

	build := func() *models.ExtractedData {
		return &models.ExtractedData{
			OriginationAmt: tokenSeries(models.SourceOrigination,
				tokenPoint("2012Q4", 6e10),
				tokenPoint("2012Q3", 5e10),
			),
			Balances: tokenSeries(models.SourceBalances, tokenPoint("2012 Q3", 2e11)),
		}
	}

	first, err := transformer.Transform(build())
	require.NoError(t, err)
	second, err := transformer.Transform(build())
	require.NoError(t, err)

	require.Equal(t, len(first.Rows), len(second.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].QuarterKey, second.Rows[i].QuarterKey)
	}
	assert.Equal(t, first.Rejects.Count(), second.Rejects.Count())
}
