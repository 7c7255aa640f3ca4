package report

import (
	"strings"
	"time"

	"creditdw/ETL/models"

	"github.com/shopspring/decimal"
)

// MeasureStat — статистика качества одной меры
type MeasureStat struct {
	NullCount  int     `json:"null_count"`
	NullRate   float64 `json:"null_rate"`
	Violations int     `json:"violations"`
}

// QualitySummary — структурированная сводка качества запуска.
// Пишется один раз за запуск для инспекции оператором,
// конвейером обратно не читается.
type QualitySummary struct {
	RunID           string                 `json:"run_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	RowCount        int                    `json:"row_count"`
	SourceRowCounts map[string]int         `json:"source_row_counts"`
	DuplicateCounts map[string]int         `json:"duplicate_counts"`
	MinYear         int                    `json:"min_year"`
	MaxYear         int                    `json:"max_year"`
	MinQuarterKey   int                    `json:"min_quarter_key"`
	MaxQuarterKey   int                    `json:"max_quarter_key"`
	Measures        map[string]MeasureStat `json:"measures"`
	FanOutWarnings  []string               `json:"fan_out_warnings,omitempty"`
	GrainCollisions int                    `json:"grain_collisions"`
	RejectCount     int                    `json:"reject_count"`
}

// Соответствие кода причины нарушению конкретной меры
var reasonMeasures = map[string]string{
	models.ReasonDefaultRateOutOfRange:          models.MeasureDefaultRate,
	"negative_" + models.MeasureOriginationsCnt: models.MeasureOriginationsCnt,
	"negative_" + models.MeasureOriginationAmt:  models.MeasureOriginationAmt,
	"negative_" + models.MeasureBalanceAmt:      models.MeasureBalanceAmt,
}

// BuildQualitySummary собирает сводку качества по результату фазы Transform
func BuildQualitySummary(runID string, data *models.TransformedData) *QualitySummary {
	summary := &QualitySummary{
		RunID:           runID,
		GeneratedAt:     time.Now(),
		RowCount:        len(data.Rows),
		SourceRowCounts: data.SourceRowCounts,
		DuplicateCounts: make(map[string]int),
		Measures:        make(map[string]MeasureStat),
		FanOutWarnings:  data.FanOutWarnings,
		GrainCollisions: data.GrainCollisions,
		RejectCount:     data.Rejects.Count(),
	}

	// Покрытие по годам и квартальным ключам
	for i, row := range data.Rows {
		if i == 0 || row.Year < summary.MinYear {
			summary.MinYear = row.Year
		}
		if i == 0 || row.Year > summary.MaxYear {
			summary.MaxYear = row.Year
		}
		if i == 0 || row.QuarterKey < summary.MinQuarterKey {
			summary.MinQuarterKey = row.QuarterKey
		}
		if i == 0 || row.QuarterKey > summary.MaxQuarterKey {
			summary.MaxQuarterKey = row.QuarterKey
		}
	}

	// Подсчет NULL по каждой мере
	measureValues := map[string]func(models.ReconciledRow) decimal.NullDecimal{
		models.MeasureOriginationsCnt: func(r models.ReconciledRow) decimal.NullDecimal { return r.OriginationsCnt },
		models.MeasureOriginationAmt:  func(r models.ReconciledRow) decimal.NullDecimal { return r.OriginationAmt },
		models.MeasureBalanceAmt:      func(r models.ReconciledRow) decimal.NullDecimal { return r.BalanceAmt },
		models.MeasureDefaultRate:     func(r models.ReconciledRow) decimal.NullDecimal { return r.DefaultRate },
		models.MeasurePrimeRate:       func(r models.ReconciledRow) decimal.NullDecimal { return r.PrimeRate },
		models.MeasureLendingRate:     func(r models.ReconciledRow) decimal.NullDecimal { return r.LendingRate },
	}

	for measure, access := range measureValues {
		stat := MeasureStat{}
		for _, row := range data.Rows {
			if !access(row).Valid {
				stat.NullCount++
			}
		}
		if len(data.Rows) > 0 {
			stat.NullRate = float64(stat.NullCount) / float64(len(data.Rows))
		}
		summary.Measures[measure] = stat
	}

	// Нарушения и дубликаты из реестра отказов
	for reason, count := range data.Rejects.CountByReason() {
		if measure, ok := reasonMeasures[reason]; ok {
			stat := summary.Measures[measure]
			stat.Violations += count
			summary.Measures[measure] = stat
			continue
		}
		if strings.HasSuffix(reason, "_duplicate_keys") {
			summary.DuplicateCounts[strings.TrimSuffix(reason, "_duplicate_keys")] = count
		}
	}

	return summary
}
