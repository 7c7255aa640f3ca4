package extractors

import (
	"fmt"
	"time"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/shopspring/decimal"
)

// fredObservation представляет одно дневное или месячное наблюдение серии FRED
type fredObservation struct {
	date  time.Time
	value decimal.Decimal
}

// readFREDSeries читает выгрузку FRED: колонка даты
// (date/observation_date) плюс первая числовая колонка значения.
// Отсутствующий файл дает пустой результат, а не ошибку.
func readFREDSeries(path string) ([]fredObservation, error) {
	if !fileExists(path) {
		return nil, nil
	}

	records, err := readFedCSV(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения серии FRED %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	dateIdx := headerIndex(header, "date", "observation_date")
	if dateIdx < 0 {
		// Выгрузки без явного заголовка даты держат ее в первой колонке
		dateIdx = 0
	}

	// Первая колонка, отличная от даты, считается колонкой значения
	valueIdx := -1
	for i := range header {
		if i != dateIdx {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return nil, nil
	}

	var observations []fredObservation
	for _, record := range records[1:] {
		if len(record) <= dateIdx || len(record) <= valueIdx {
			continue
		}

		date, ok := parseDate(record[dateIdx])
		if !ok {
			continue
		}
		value := parseNumeric(record[valueIdx])
		if !value.Valid {
			// '.' — маркер пропуска наблюдения в выгрузках FRED
			continue
		}

		observations = append(observations, fredObservation{date: date, value: value.Decimal})
	}

	return observations, nil
}

// quarterOf возвращает номер квартала для даты наблюдения
func quarterOf(date time.Time) int {
	return (int(date.Month())-1)/3 + 1
}

// aggregateQuarterly усредняет наблюдения по паре (год, квартал),
// сохраняя порядок первого вхождения ключа
func aggregateQuarterly(observations []fredObservation) []models.SeriesPoint {
	type bucket struct {
		sum   decimal.Decimal
		count int64
	}

	buckets := make(map[int]*bucket)
	var order []int

	for _, obs := range observations {
		key := obs.date.Year()*10 + quarterOf(obs.date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum = b.sum.Add(obs.value)
		b.count++
	}

	points := make([]models.SeriesPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		points = append(points, models.SeriesPoint{
			Year:       key / 10,
			QuarterNum: key % 10,
			QuarterKey: key,
			Value: decimal.NullDecimal{
				Decimal: b.sum.Div(decimal.NewFromInt(b.count)),
				Valid:   true,
			},
		})
	}

	return points
}

// PrimeRateExtractor извлекает прайм-ставку FRED (DPRIME)
// как квартальное среднее, ключ — квартальный ключ
type PrimeRateExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewPrimeRateExtractor создает новый экземпляр PrimeRateExtractor
func NewPrimeRateExtractor(path string, logger *utils.ETLLogger) *PrimeRateExtractor {
	return &PrimeRateExtractor{
		path:   path,
		logger: logger,
	}
}

// Extract возвращает квартальную серию прайм-ставки
func (e *PrimeRateExtractor) Extract() (models.SourceSeries, error) {
	series := models.SourceSeries{Name: models.SourcePrimeRate, Grain: models.GrainQuarterKey}

	observations, err := readFREDSeries(e.path)
	if err != nil {
		return series, err
	}
	if len(observations) == 0 {
		e.logger.Info("Серия прайм-ставки %s отсутствует или пуста", e.path)
		return series, nil
	}

	series.Points = aggregateQuarterly(observations)
	e.logger.Debug("Извлечено %d кварталов прайм-ставки", len(series.Points))
	return series, nil
}

// DefaultRateQuarterlyExtractor извлекает квартальную ставку просрочки FRED
// (DRALACBN, проценты), переводя ее в долю [0, 1], ключ — (год, квартал)
type DefaultRateQuarterlyExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewDefaultRateQuarterlyExtractor создает новый экземпляр DefaultRateQuarterlyExtractor
func NewDefaultRateQuarterlyExtractor(path string, logger *utils.ETLLogger) *DefaultRateQuarterlyExtractor {
	return &DefaultRateQuarterlyExtractor{
		path:   path,
		logger: logger,
	}
}

var percentScale = decimal.NewFromInt(100)

// Extract возвращает квартальную серию ставки дефолта в долях
func (e *DefaultRateQuarterlyExtractor) Extract() (models.SourceSeries, error) {
	series := models.SourceSeries{Name: models.SourceDefaultRateQ, Grain: models.GrainYearQuarter}

	observations, err := readFREDSeries(e.path)
	if err != nil {
		return series, err
	}
	if len(observations) == 0 {
		e.logger.Info("Квартальная серия ставки дефолта %s отсутствует или пуста", e.path)
		return series, nil
	}

	points := aggregateQuarterly(observations)
	for i := range points {
		// Процент -> доля
		points[i].Value.Decimal = points[i].Value.Decimal.Div(percentScale)
	}
	series.Points = points

	e.logger.Debug("Извлечено %d кварталов ставки дефолта", len(series.Points))
	return series, nil
}
