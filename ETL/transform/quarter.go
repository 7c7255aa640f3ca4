package transform

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"creditdw/ETL/models"
)

// ErrUnparseableQuarter возвращается для токена, не являющегося квартальным
var ErrUnparseableQuarter = errors.New("нераспознаваемый формат квартала")

// Допустимые формы после нормализации: '2012Q3', '2012 Q3', 'Q3 2012'
var quarterTokenRegexp = regexp.MustCompile(`^(?:\d{4} ?Q[1-4]|Q[1-4] \d{4})$`)

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// NormalizeQuarterToken приводит произвольную строку к каноническому токену 'YYYYQ#'.
// Возвращает пустую строку, если токен не распознан.
func NormalizeQuarterToken(raw string) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	// Убираем маркер порядка байтов, встречающийся в выгрузках
	token = strings.ReplaceAll(token, "\uFEFF", "")
	// Схлопываем внутренние пробелы до одного
	token = whitespaceRegexp.ReplaceAllString(token, " ")

	if !quarterTokenRegexp.MatchString(token) {
		return ""
	}

	// 'Q3 2012' -> '2012Q3'
	if strings.HasPrefix(token, "Q") {
		parts := strings.SplitN(token, " ", 2)
		return parts[1] + parts[0]
	}

	// '2012 Q3' -> '2012Q3'
	return strings.ReplaceAll(token, " ", "")
}

// ParseQuarter разбирает квартальный токен и выводит календарные поля квартала.
// Квартальный ключ считается по формуле год*10 + номер квартала; формула
// зафиксирована для совместимости с уже сохраненным состоянием хранилища.
func ParseQuarter(raw string) (models.CalendarQuarter, error) {
	token := NormalizeQuarterToken(raw)
	if token == "" {
		return models.CalendarQuarter{}, ErrUnparseableQuarter
	}

	year, err := strconv.Atoi(token[:4])
	if err != nil {
		return models.CalendarQuarter{}, ErrUnparseableQuarter
	}
	quarterNum, err := strconv.Atoi(token[len(token)-1:])
	if err != nil {
		return models.CalendarQuarter{}, ErrUnparseableQuarter
	}

	startMonth := (quarterNum-1)*3 + 1
	endMonth := quarterNum * 3

	quarterStart := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	// День 0 следующего месяца — последний календарный день endMonth,
	// длина месяца и високосные годы учитываются пакетом time
	quarterEnd := time.Date(year, time.Month(endMonth)+1, 0, 0, 0, 0, 0, time.UTC)

	return models.CalendarQuarter{
		Year:         year,
		QuarterNum:   quarterNum,
		QuarterStart: quarterStart,
		QuarterEnd:   quarterEnd,
		QuarterKey:   year*10 + quarterNum,
	}, nil
}
