package transform

import (
	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
)

// FillPolicy отвечает за заполнение пропусков медленно меняющихся
// макро-ставок. Заполнение работает только внутри календарного года:
// пропуск замещается ближайшим предыдущим ненулевым значением того же года
// и никогда не заимствует значение из последнего квартала прошлого года.
// Ставка дефолта политикой не затрагивается.
type FillPolicy struct {
	logger *utils.ETLLogger
}

// NewFillPolicy создает новый экземпляр FillPolicy
func NewFillPolicy(logger *utils.ETLLogger) *FillPolicy {
	return &FillPolicy{
		logger: logger,
	}
}

// Apply заполняет пропуски prime_rate и lending_rate в строках сетки.
// Строки должны быть отсортированы по возрастанию кварталов.
// Возвращает количество заполненных значений.
func (p *FillPolicy) Apply(rows []models.ReconciledRow) int {
	filled := 0
	filled += p.fillMeasure(rows, models.MeasurePrimeRate, func(r *models.ReconciledRow) *decimal.NullDecimal {
		return &r.PrimeRate
	})
	filled += p.fillMeasure(rows, models.MeasureLendingRate, func(r *models.ReconciledRow) *decimal.NullDecimal {
		return &r.LendingRate
	})

	if filled > 0 {
		p.logger.Info("Политика заполнения закрыла %d пропусков", filled)
	}

	return filled
}

// fillMeasure выполняет прямое заполнение одной меры в границах года
func (p *FillPolicy) fillMeasure(rows []models.ReconciledRow, measure string,
	access func(*models.ReconciledRow) *decimal.NullDecimal) int {

	filled := 0
	carryYear := 0
	var carry decimal.NullDecimal

	for i := range rows {
		row := &rows[i]

		// Граница календарного года сбрасывает перенос
		if row.Year != carryYear {
			carryYear = row.Year
			carry = decimal.NullDecimal{}
		}

		value := access(row)
		if value.Valid {
			carry = *value
			continue
		}

		if carry.Valid {
			*value = carry
			filled++
			p.logger.Debug("Заполнен пропуск %s в квартале %s значением %s",
				measure, row.Quarter, carry.Decimal.String())
		}
	}

	return filled
}
