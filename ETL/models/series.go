package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Имена источников, используемые в реестре отказов и сводке качества
const (
	SourceOrigination     = "origination"
	SourceOriginationsCnt = "originations_cnt"
	SourceBalances        = "balances"
	SourceDefaultRateQ    = "default_rate_q"
	SourceDefaultRateY    = "default_rate_y"
	SourcePrimeRate       = "prime_rate"
	SourceLendingRate     = "lending_rate"
)

// Имена измерений (мер) итоговой таблицы фактов
const (
	MeasureOriginationsCnt = "originations_cnt"
	MeasureOriginationAmt  = "origination_amt"
	MeasureBalanceAmt      = "balance_amt"
	MeasureDefaultRate     = "default_rate"
	MeasurePrimeRate       = "prime_rate"
	MeasureLendingRate     = "lending_rate"
)

// SeriesGrain определяет естественный ключ дедупликации и соединения источника
type SeriesGrain int

const (
	// GrainQuarterToken — ключ по нормализованному квартальному токену ('2012Q3')
	GrainQuarterToken SeriesGrain = iota
	// GrainYearQuarter — ключ по паре (год, номер квартала)
	GrainYearQuarter
	// GrainQuarterKey — ключ по квартальному ключу (год*10 + квартал)
	GrainQuarterKey
	// GrainYear — годовой ключ, значение тиражируется на все кварталы года
	GrainYear
)

// SeriesPoint представляет одно наблюдение источника: временной ключ и значение
type SeriesPoint struct {
	Quarter    string
	Year       int
	QuarterNum int
	QuarterKey int
	Value      decimal.NullDecimal
}

// Key возвращает ключ дедупликации наблюдения для заданной гранулярности
func (p SeriesPoint) Key(grain SeriesGrain) string {
	switch grain {
	case GrainQuarterToken:
		return p.Quarter
	case GrainYearQuarter:
		return fmt.Sprintf("%d-%d", p.Year, p.QuarterNum)
	case GrainQuarterKey:
		return strconv.Itoa(p.QuarterKey)
	default:
		return strconv.Itoa(p.Year)
	}
}

// SourceSeries представляет таблицу наблюдений ровно одного измерения из внешнего источника.
// Отсутствующий источник дает пустую серию, а не ошибку.
type SourceSeries struct {
	Name   string
	Grain  SeriesGrain
	Points []SeriesPoint
}

// IsEmpty сообщает, что источник отсутствовал или не дал ни одного наблюдения
func (s SourceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// DefaultRateKind определяет происхождение серии ставки дефолта
type DefaultRateKind int

const (
	// DefaultRateAbsent — ни квартальный, ни годовой источник недоступны
	DefaultRateAbsent DefaultRateKind = iota
	// DefaultRateQuarterly — настоящая квартальная серия (предпочтительная)
	DefaultRateQuarterly
	// DefaultRateYearly — годовой резервный источник
	DefaultRateYearly
)

// DefaultRateSource — вариантный выбор серии ставки дефолта,
// разрешаемый один раз до слияния источников
type DefaultRateSource struct {
	Kind   DefaultRateKind
	Series SourceSeries
}

// ResolveDefaultRate выбирает серию ставки дефолта: квартальная серия
// предпочтительнее годового резерва, при отсутствии обеих — Absent
func ResolveDefaultRate(quarterly, yearly SourceSeries) DefaultRateSource {
	if !quarterly.IsEmpty() {
		return DefaultRateSource{Kind: DefaultRateQuarterly, Series: quarterly}
	}
	if !yearly.IsEmpty() {
		return DefaultRateSource{Kind: DefaultRateYearly, Series: yearly}
	}
	return DefaultRateSource{Kind: DefaultRateAbsent}
}

// ExtractedData содержит результат фазы Extract: по одной серии на измерение
type ExtractedData struct {
	OriginationAmt  SourceSeries
	OriginationsCnt SourceSeries
	Balances        SourceSeries
	DefaultRate     DefaultRateSource
	PrimeRate       SourceSeries
	LendingRate     SourceSeries
	ExtractedAt     time.Time
}

// SourceRowCounts возвращает количество извлеченных строк по каждому источнику
func (d *ExtractedData) SourceRowCounts() map[string]int {
	counts := map[string]int{
		SourceOrigination: len(d.OriginationAmt.Points),
		SourceBalances:    len(d.Balances.Points),
		SourcePrimeRate:   len(d.PrimeRate.Points),
		SourceLendingRate: len(d.LendingRate.Points),
	}
	switch d.DefaultRate.Kind {
	case DefaultRateQuarterly:
		counts[SourceDefaultRateQ] = len(d.DefaultRate.Series.Points)
	case DefaultRateYearly:
		counts[SourceDefaultRateY] = len(d.DefaultRate.Series.Points)
	}
	return counts
}
