package extractors

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Значения, считающиеся пропуском в выгрузках
var missingTokens = map[string]bool{
	"":     true,
	".":    true,
	"null": true,
	"none": true,
	"nan":  true,
}

// Символы денежного форматирования и проценты, удаляемые перед разбором числа
var numericCleaner = strings.NewReplacer("$", "", ",", "", "%", "")

// readFedCSV читает CSV-выгрузку: убирает маркер порядка байтов и
// пропускает необязательную баннерную строку 'Source: ...' перед заголовком
func readFedCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := strings.TrimPrefix(string(raw), "\uFEFF")

	// Баннерная строка не является частью таблицы
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		first := strings.ToLower(strings.TrimSpace(content[:newline]))
		if strings.HasPrefix(first, "source:") {
			content = content[newline+1:]
		}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return reader.ReadAll()
}

// cleanHeader убирает пробелы и кавычки вокруг имени колонки
func cleanHeader(name string) string {
	return strings.Trim(strings.TrimSpace(name), `"`)
}

// headerIndex ищет колонку по любому из имен без учета регистра.
// Возвращает -1, если колонка не найдена.
func headerIndex(header []string, names ...string) int {
	for i, column := range header {
		cleaned := cleanHeader(column)
		for _, name := range names {
			if strings.EqualFold(cleaned, name) {
				return i
			}
		}
	}
	return -1
}

// parseNumeric разбирает числовое значение выгрузки: денежное форматирование
// и знак процента удаляются, маркеры пропуска дают NULL
func parseNumeric(s string) decimal.NullDecimal {
	cleaned := strings.TrimSpace(numericCleaner.Replace(s))
	if missingTokens[strings.ToLower(cleaned)] {
		return decimal.NullDecimal{}
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: value, Valid: true}
}

// Форматы дат, встречающиеся в выгрузках FRED
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
}

// parseDate разбирает дату наблюдения в одном из известных форматов
func parseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fileExists сообщает о наличии исходного файла
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
