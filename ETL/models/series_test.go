package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func point(value float64) SeriesPoint {
	return SeriesPoint{Value: decimal.NullDecimal{Decimal: decimal.NewFromFloat(value), Valid: true}}
}

func TestResolveDefaultRate(t *testing.T) {
	quarterly := SourceSeries{Name: SourceDefaultRateQ, Grain: GrainYearQuarter, Points: []SeriesPoint{point(0.02)}}
	yearly := SourceSeries{Name: SourceDefaultRateY, Grain: GrainYear, Points: []SeriesPoint{point(0.03)}}
	empty := SourceSeries{Name: SourceDefaultRateQ, Grain: GrainYearQuarter}

	tests := []struct {
		name      string
		quarterly SourceSeries
		yearly    SourceSeries
		expected  DefaultRateKind
	}{
		{name: "квартальная предпочтительнее годовой", quarterly: quarterly, yearly: yearly, expected: DefaultRateQuarterly},
		{name: "годовой резерв при пустой квартальной", quarterly: empty, yearly: yearly, expected: DefaultRateYearly},
		{name: "обе пустые", quarterly: empty, yearly: SourceSeries{}, expected: DefaultRateAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := ResolveDefaultRate(tt.quarterly, tt.yearly)
			assert.Equal(t, tt.expected, resolved.Kind)
		})
	}
}

func TestSeriesPointKey(t *testing.T) {
	p := SeriesPoint{Quarter: "2012Q3", Year: 2012, QuarterNum: 3, QuarterKey: 20123}

	assert.Equal(t, "2012Q3", p.Key(GrainQuarterToken))
	assert.Equal(t, "2012-3", p.Key(GrainYearQuarter))
	assert.Equal(t, "20123", p.Key(GrainQuarterKey))
	assert.Equal(t, "2012", p.Key(GrainYear))
}

func TestSourceRowCounts(t *testing.T) {
	data := &ExtractedData{
		OriginationAmt: SourceSeries{Points: []SeriesPoint{point(1), point(2)}},
		DefaultRate: DefaultRateSource{
			Kind:   DefaultRateYearly,
			Series: SourceSeries{Points: []SeriesPoint{point(0.03)}},
		},
	}

	counts := data.SourceRowCounts()

	assert.Equal(t, 2, counts[SourceOrigination])
	assert.Equal(t, 1, counts[SourceDefaultRateY])
	_, hasQuarterly := counts[SourceDefaultRateQ]
	assert.False(t, hasQuarterly, "учитывается только выбранный вариант ставки дефолта")
}

func TestRejectLedgerCountByReason(t *testing.T) {
	var ledger RejectLedger
	ledger.Add(RejectRecord{Source: "balances", Reason: "balances_duplicate_keys"})
	ledger.Add(RejectRecord{Source: "balances", Reason: "balances_duplicate_keys"})
	ledger.Add(RejectRecord{Source: "default_rate", Reason: ReasonDefaultRateOutOfRange})

	assert.Equal(t, 3, ledger.Count())
	byReason := ledger.CountByReason()
	assert.Equal(t, 2, byReason["balances_duplicate_keys"])
	assert.Equal(t, 1, byReason[ReasonDefaultRateOutOfRange])
}
