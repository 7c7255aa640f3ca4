package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalendarQuarter представляет календарный квартал, детерминированно
// выведенный из квартального ключа; после создания не изменяется
type CalendarQuarter struct {
	Year         int
	QuarterNum   int
	QuarterStart time.Time
	QuarterEnd   time.Time
	QuarterKey   int
}

// ReconciledRow представляет одну строку канонической квартальной сетки
// после всех соединений: все шесть мер (возможно NULL) плюс календарные поля.
// Изменяется на месте шлюзом качества и политикой заполнения.
type ReconciledRow struct {
	Quarter string
	CalendarQuarter
	OriginationsCnt decimal.NullDecimal
	OriginationAmt  decimal.NullDecimal
	BalanceAmt      decimal.NullDecimal
	DefaultRate     decimal.NullDecimal
	PrimeRate       decimal.NullDecimal
	LendingRate     decimal.NullDecimal
}

// TransformedData содержит результат фазы Transform вместе с реестром отказов.
// Реестр — явное значение, протягиваемое через стадии, а не глобальное состояние.
type TransformedData struct {
	Rows            []ReconciledRow
	Rejects         RejectLedger
	FanOutWarnings  []string
	GrainCollisions int
	SourceRowCounts map[string]int
}

// DimDateQtrRow представляет строку измерения дат dim_date_qtr
type DimDateQtrRow struct {
	QuarterKey   int
	Year         int
	Quarter      int
	QuarterStart time.Time
	QuarterEnd   time.Time
}
