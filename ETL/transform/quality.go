package transform

import (
	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
)

// QualityGate отвечает за проверку диапазонов и знаков значений мер.
// Нарушение обнуляет только саму меру, строка сохраняется;
// каждое обнуление получает запись в реестре отказов.
type QualityGate struct {
	logger *utils.ETLLogger
}

// NewQualityGate создает новый экземпляр QualityGate
func NewQualityGate(logger *utils.ETLLogger) *QualityGate {
	return &QualityGate{
		logger: logger,
	}
}

var (
	qualityZero = decimal.Zero
	qualityOne  = decimal.NewFromInt(1)
)

// Apply применяет правила качества к строкам сетки на месте.
// Возвращает количество зафиксированных нарушений.
func (g *QualityGate) Apply(rows []models.ReconciledRow, ledger *models.RejectLedger) int {
	violations := 0

	for i := range rows {
		row := &rows[i]

		// Правило диапазона: ставка дефолта лежит в [0, 1] или NULL.
		// Значение вне диапазона (например, процент вместо доли) обнуляется.
		if row.DefaultRate.Valid {
			value := row.DefaultRate.Decimal
			if value.Cmp(qualityZero) < 0 || value.Cmp(qualityOne) > 0 {
				g.reject(ledger, row, models.MeasureDefaultRate, models.ReasonDefaultRateOutOfRange, value)
				row.DefaultRate = decimal.NullDecimal{}
				violations++
			}
		}

		// Правило знака: счетчики и суммы неотрицательны или NULL
		violations += g.applySignRule(ledger, row, models.MeasureOriginationsCnt, &row.OriginationsCnt)
		violations += g.applySignRule(ledger, row, models.MeasureOriginationAmt, &row.OriginationAmt)
		violations += g.applySignRule(ledger, row, models.MeasureBalanceAmt, &row.BalanceAmt)
	}

	if violations > 0 {
		g.logger.Info("Шлюз качества обнулил %d значений", violations)
	}

	return violations
}

// applySignRule обнуляет отрицательное значение меры и записывает нарушение
func (g *QualityGate) applySignRule(ledger *models.RejectLedger, row *models.ReconciledRow,
	measure string, value *decimal.NullDecimal) int {

	if !value.Valid || value.Decimal.Cmp(qualityZero) >= 0 {
		return 0
	}

	g.reject(ledger, row, measure, "negative_"+measure, value.Decimal)
	*value = decimal.NullDecimal{}
	return 1
}

// reject добавляет запись о нарушении в реестр отказов
func (g *QualityGate) reject(ledger *models.RejectLedger, row *models.ReconciledRow,
	measure, reason string, value decimal.Decimal) {

	ledger.Add(models.RejectRecord{
		Source:     measure,
		Reason:     reason,
		Quarter:    row.Quarter,
		Year:       row.Year,
		QuarterKey: row.QuarterKey,
		Value:      value.String(),
	})
	g.logger.Debug("Нарушение качества %s в квартале %s: %s", reason, row.Quarter, value.String())
}
