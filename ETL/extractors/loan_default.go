package extractors

import (
	"strings"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
)

// Значения колонки статуса, означающие дефолт по займу
var defaultStatusTokens = map[string]bool{
	"1":          true,
	"true":       true,
	"default":    true,
	"charge-off": true,
	"chargeoff":  true,
}

// DefaultRateYearlyExtractor вычисляет годовой резерв ставки дефолта
// из файла займов: доля займов с признаком дефолта по каждому году.
// Любая структурная неожиданность файла дает пустую серию, чтобы
// не ломать слияние (резервный источник необязателен).
type DefaultRateYearlyExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewDefaultRateYearlyExtractor создает новый экземпляр DefaultRateYearlyExtractor
func NewDefaultRateYearlyExtractor(path string, logger *utils.ETLLogger) *DefaultRateYearlyExtractor {
	return &DefaultRateYearlyExtractor{
		path:   path,
		logger: logger,
	}
}

// Extract возвращает годовую серию ставки дефолта
func (e *DefaultRateYearlyExtractor) Extract() models.SourceSeries {
	series := models.SourceSeries{Name: models.SourceDefaultRateY, Grain: models.GrainYear}

	if !fileExists(e.path) {
		e.logger.Info("Файл годового резерва %s отсутствует, серия будет пустой", e.path)
		return series
	}

	records, err := readFedCSV(e.path)
	if err != nil || len(records) < 2 {
		e.logger.Warn("Файл годового резерва %s не прочитан, серия будет пустой", e.path)
		return series
	}

	header := records[0]
	yearIdx := headerIndex(header, "year")
	statusIdx := headerIndex(header, "status", "default", "default_flag", "chargeoff", "charge_off")
	if yearIdx < 0 || statusIdx < 0 {
		e.logger.Warn("Файл годового резерва %s не содержит колонок года/статуса", e.path)
		return series
	}

	type bucket struct {
		defaults int64
		total    int64
	}
	buckets := make(map[int]*bucket)
	var order []int

	for _, record := range records[1:] {
		if len(record) <= yearIdx || len(record) <= statusIdx {
			continue
		}

		yearValue := parseNumeric(record[yearIdx])
		if !yearValue.Valid {
			continue
		}
		year := int(yearValue.Decimal.IntPart())

		b, ok := buckets[year]
		if !ok {
			b = &bucket{}
			buckets[year] = b
			order = append(order, year)
		}
		b.total++
		if defaultStatusTokens[strings.ToLower(strings.TrimSpace(record[statusIdx]))] {
			b.defaults++
		}
	}

	for _, year := range order {
		b := buckets[year]
		series.Points = append(series.Points, models.SeriesPoint{
			Year: year,
			Value: decimal.NullDecimal{
				Decimal: decimal.NewFromInt(b.defaults).Div(decimal.NewFromInt(b.total)),
				Valid:   true,
			},
		})
	}

	e.logger.Debug("Извлечено %d лет годового резерва ставки дефолта", len(series.Points))
	return series
}
