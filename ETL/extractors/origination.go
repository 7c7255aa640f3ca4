package extractors

import (
	"fmt"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
)

// Имена колонок вендорской выгрузки по выдачам кредитных карт
const (
	columnYrQtr          = "YRQTR"
	columnOriginationAmt = "New Originations ($Billions)"
	columnOriginationCnt = "Number of New Accounts (Millions)"
)

var (
	billionScale = decimal.NewFromInt(1_000_000_000)
	millionScale = decimal.NewFromInt(1_000_000)
)

// OriginationExtractor извлекает квартальные выдачи кредитных карт:
// сумму выдач и количество новых счетов
type OriginationExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewOriginationExtractor создает новый экземпляр OriginationExtractor
func NewOriginationExtractor(path string, logger *utils.ETLLogger) *OriginationExtractor {
	return &OriginationExtractor{
		path:   path,
		logger: logger,
	}
}

// Extract возвращает серии суммы выдач (в единицах валюты) и количества
// счетов (в штуках). Отсутствующий файл дает пустые серии, а не ошибку.
func (e *OriginationExtractor) Extract() (amt, cnt models.SourceSeries, err error) {
	amt = models.SourceSeries{Name: models.SourceOrigination, Grain: models.GrainQuarterToken}
	cnt = models.SourceSeries{Name: models.SourceOriginationsCnt, Grain: models.GrainQuarterToken}

	if !fileExists(e.path) {
		e.logger.Info("Файл выдач %s отсутствует, серия будет пустой", e.path)
		return amt, cnt, nil
	}

	records, err := readFedCSV(e.path)
	if err != nil {
		return amt, cnt, fmt.Errorf("ошибка чтения файла выдач %s: %w", e.path, err)
	}
	if len(records) < 2 {
		return amt, cnt, nil
	}

	header := records[0]
	quarterIdx := headerIndex(header, columnYrQtr, "quarter")
	amtIdx := headerIndex(header, columnOriginationAmt)
	cntIdx := headerIndex(header, columnOriginationCnt)
	if quarterIdx < 0 || amtIdx < 0 || cntIdx < 0 {
		return amt, cnt, fmt.Errorf("файл выдач %s не содержит ожидаемых колонок", e.path)
	}

	for _, record := range records[1:] {
		if len(record) <= quarterIdx || len(record) <= amtIdx || len(record) <= cntIdx {
			continue
		}
		token := record[quarterIdx]

		// Миллиарды валюты -> единицы, миллионы счетов -> штуки
		amt.Points = append(amt.Points, models.SeriesPoint{
			Quarter: token,
			Value:   scaleNumeric(parseNumeric(record[amtIdx]), billionScale),
		})
		cnt.Points = append(cnt.Points, models.SeriesPoint{
			Quarter: token,
			Value:   scaleNumeric(parseNumeric(record[cntIdx]), millionScale),
		})
	}

	e.logger.Debug("Извлечено %d строк выдач", len(amt.Points))
	return amt, cnt, nil
}

// scaleNumeric умножает значение на масштаб единиц, сохраняя NULL
func scaleNumeric(value decimal.NullDecimal, scale decimal.Decimal) decimal.NullDecimal {
	if !value.Valid {
		return value
	}
	return decimal.NullDecimal{Decimal: value.Decimal.Mul(scale), Valid: true}
}
