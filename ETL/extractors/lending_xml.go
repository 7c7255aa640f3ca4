package extractors

import (
	"encoding/xml"
	"io"
	"os"
	"sort"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// wbRecord представляет элемент <record> выгрузки World Bank
type wbRecord struct {
	Fields []wbField `xml:"field"`
}

// wbField представляет элемент <field name="...">значение</field>
type wbField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// fieldMap собирает поля записи в словарь имя -> значение
func (r wbRecord) fieldMap() map[string]string {
	fields := make(map[string]string, len(r.Fields))
	for _, field := range r.Fields {
		fields[field.Name] = field.Value
	}
	return fields
}

// LendingRateExtractor извлекает годовую ставку кредитования по стране
// из XML-выгрузки World Bank. Необязательный источник: отсутствие или
// нечитаемость файла дает пустую серию.
type LendingRateExtractor struct {
	path    string
	country string
	logger  *utils.ETLLogger
}

// NewLendingRateExtractor создает новый экземпляр LendingRateExtractor
func NewLendingRateExtractor(path, country string, logger *utils.ETLLogger) *LendingRateExtractor {
	return &LendingRateExtractor{
		path:    path,
		country: country,
		logger:  logger,
	}
}

// Extract возвращает годовую серию ставки кредитования
func (e *LendingRateExtractor) Extract() models.SourceSeries {
	series := models.SourceSeries{Name: models.SourceLendingRate, Grain: models.GrainYear}

	if !fileExists(e.path) {
		e.logger.Info("XML ставки кредитования %s отсутствует, серия будет пустой", e.path)
		return series
	}

	file, err := os.Open(e.path)
	if err != nil {
		e.logger.Warn("XML ставки кредитования %s не открыт: %v", e.path, err)
		return series
	}
	defer file.Close()

	decoder := xml.NewDecoder(file)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			e.logger.Warn("XML ставки кредитования %s не разобран: %v", e.path, err)
			return models.SourceSeries{Name: series.Name, Grain: series.Grain}
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}

		var record wbRecord
		if err := decoder.DecodeElement(&record, &start); err != nil {
			continue
		}
		fields := record.fieldMap()

		country := fields["Country or Area"]
		if country == "" {
			country = fields["Country"]
		}
		if country != e.country {
			continue
		}

		yearText := firstNonEmpty(fields["Year"], fields["date"], fields["Date"])
		valueText := firstNonEmpty(fields["Value"], fields["value"])
		if yearText == "" || valueText == "" {
			continue
		}

		yearValue := parseNumeric(yearText)
		value := parseNumeric(valueText)
		if !yearValue.Valid || !value.Valid {
			continue
		}

		series.Points = append(series.Points, models.SeriesPoint{
			Year:  int(yearValue.Decimal.IntPart()),
			Value: value,
		})
	}

	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Year < series.Points[j].Year
	})

	e.logger.Debug("Извлечено %d лет ставки кредитования для страны %s", len(series.Points), e.country)
	return series
}

// firstNonEmpty возвращает первое непустое значение
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
