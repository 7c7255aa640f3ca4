package extractors

import (
	"fmt"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// Имя колонки вендорской выгрузки по балансам кредитных карт
const columnBalanceAmt = "Total Balances ($Billions)"

// BalancesExtractor извлекает квартальные балансы кредитных карт
type BalancesExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewBalancesExtractor создает новый экземпляр BalancesExtractor
func NewBalancesExtractor(path string, logger *utils.ETLLogger) *BalancesExtractor {
	return &BalancesExtractor{
		path:   path,
		logger: logger,
	}
}

// Extract возвращает серию балансов в единицах валюты.
// Отсутствующий файл дает пустую серию, а не ошибку.
func (e *BalancesExtractor) Extract() (models.SourceSeries, error) {
	series := models.SourceSeries{Name: models.SourceBalances, Grain: models.GrainQuarterToken}

	if !fileExists(e.path) {
		e.logger.Info("Файл балансов %s отсутствует, серия будет пустой", e.path)
		return series, nil
	}

	records, err := readFedCSV(e.path)
	if err != nil {
		return series, fmt.Errorf("ошибка чтения файла балансов %s: %w", e.path, err)
	}
	if len(records) < 2 {
		return series, nil
	}

	header := records[0]
	quarterIdx := headerIndex(header, columnYrQtr, "quarter")
	balanceIdx := headerIndex(header, columnBalanceAmt)
	if quarterIdx < 0 || balanceIdx < 0 {
		return series, fmt.Errorf("файл балансов %s не содержит ожидаемых колонок", e.path)
	}

	for _, record := range records[1:] {
		if len(record) <= quarterIdx || len(record) <= balanceIdx {
			continue
		}
		series.Points = append(series.Points, models.SeriesPoint{
			Quarter: record[quarterIdx],
			Value:   scaleNumeric(parseNumeric(record[balanceIdx]), billionScale),
		})
	}

	e.logger.Debug("Извлечено %d строк балансов", len(series.Points))
	return series, nil
}
