package transform

import (
	"fmt"
	"sort"

	"creditdw/ETL/models"

	"github.com/shopspring/decimal"
)

// normalizeTokenSeries нормализует квартальные токены серии и молча отбрасывает
// наблюдения с нераспознаваемым токеном. Фильтрация выполняется до любой
// дедупликации и любого соединения.
func normalizeTokenSeries(series models.SourceSeries) models.SourceSeries {
	normalized := models.SourceSeries{Name: series.Name, Grain: series.Grain}
	for _, point := range series.Points {
		quarter, err := ParseQuarter(point.Quarter)
		if err != nil {
			continue
		}
		point.Quarter = NormalizeQuarterToken(point.Quarter)
		point.Year = quarter.Year
		point.QuarterNum = quarter.QuarterNum
		point.QuarterKey = quarter.QuarterKey
		normalized.Points = append(normalized.Points, point)
	}
	return normalized
}

// dedupeSeries отбрасывает наблюдения с повторяющимся естественным ключом,
// сохраняя первое вхождение и порядок ввода. Каждый дубликат записывается
// в реестр отказов с причиной '<источник>_duplicate_keys'.
func dedupeSeries(series models.SourceSeries, ledger *models.RejectLedger) models.SourceSeries {
	deduped := models.SourceSeries{Name: series.Name, Grain: series.Grain}
	seen := make(map[string]bool, len(series.Points))

	for _, point := range series.Points {
		key := point.Key(series.Grain)
		if seen[key] {
			ledger.Add(models.RejectRecord{
				Source:     series.Name,
				Reason:     series.Name + "_duplicate_keys",
				Quarter:    point.Quarter,
				Year:       point.Year,
				QuarterKey: point.QuarterKey,
				Value:      nullDecimalString(point.Value),
			})
			continue
		}
		seen[key] = true
		deduped.Points = append(deduped.Points, point)
	}

	return deduped
}

// dedupeSeriesQuiet — дедупликация без записи в реестр. Используется для серии
// количества выдач: она приходит из того же файла, что и серия сумм, и ее
// дубликаты уже учтены при дедупликации опорной серии.
func dedupeSeriesQuiet(series models.SourceSeries) models.SourceSeries {
	deduped := models.SourceSeries{Name: series.Name, Grain: series.Grain}
	seen := make(map[string]bool, len(series.Points))
	for _, point := range series.Points {
		key := point.Key(series.Grain)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped.Points = append(deduped.Points, point)
	}
	return deduped
}

// joinIndex — индекс соединяемой серии: первое значение по ключу
// плюс количество вхождений ключа для контроля фан-аута
type joinIndex struct {
	values map[string]decimal.NullDecimal
	counts map[string]int
}

func buildJoinIndex(series models.SourceSeries) joinIndex {
	idx := joinIndex{
		values: make(map[string]decimal.NullDecimal, len(series.Points)),
		counts: make(map[string]int, len(series.Points)),
	}
	for _, point := range series.Points {
		key := point.Key(series.Grain)
		if _, ok := idx.values[key]; !ok {
			idx.values[key] = point.Value
		}
		idx.counts[key]++
	}
	return idx
}

// rowKey возвращает ключ строки сетки для заданной гранулярности соединения
func rowKey(row models.ReconciledRow, grain models.SeriesGrain) string {
	point := models.SeriesPoint{
		Quarter:    row.Quarter,
		Year:       row.Year,
		QuarterNum: row.QuarterNum,
		QuarterKey: row.QuarterKey,
	}
	return point.Key(grain)
}

// leftJoin выполняет левое соединение серии с канонической сеткой.
// Корректное левое соединение по уникальному ключу не меняет количество строк;
// если совпадения раздули бы результат сверх допуска, выдается предупреждение
// о фан-ауте с именем соединения, а для строки берется первое значение.
func leftJoin(rows []models.ReconciledRow, series models.SourceSeries, tolerance float64,
	assign func(*models.ReconciledRow, decimal.NullDecimal)) (fanOutWarning string) {

	idx := buildJoinIndex(series)

	// Прогнозируем размер результата так, как его раздуло бы соединение
	// с неуникальным ключом
	projected := 0
	for i := range rows {
		matches := idx.counts[rowKey(rows[i], series.Grain)]
		if matches == 0 {
			matches = 1
		}
		projected += matches
	}
	if float64(projected) > float64(len(rows))*(1.0+tolerance) {
		fanOutWarning = fmt.Sprintf(
			"фан-аут в соединении %s: %d строк вместо %d — неуникальный ключ источника",
			series.Name, projected, len(rows))
	}

	for i := range rows {
		if value, ok := idx.values[rowKey(rows[i], series.Grain)]; ok {
			assign(&rows[i], value)
		}
	}

	return fanOutWarning
}

// mergeSources собирает каноническую квартальную сетку: опорная серия выдач
// определяет набор кварталов, остальные источники присоединяются левым
// соединением по своим естественным ключам
func mergeSources(data *models.ExtractedData, tolerance float64, ledger *models.RejectLedger) ([]models.ReconciledRow, []string) {
	var warnings []string

	// Опорная серия: кварталы выдач задают сетку результата
	spine := dedupeSeries(normalizeTokenSeries(data.OriginationAmt), ledger)

	rows := make([]models.ReconciledRow, 0, len(spine.Points))
	for _, point := range spine.Points {
		quarter, err := ParseQuarter(point.Quarter)
		if err != nil {
			continue
		}
		rows = append(rows, models.ReconciledRow{
			Quarter:         point.Quarter,
			CalendarQuarter: quarter,
			OriginationAmt:  point.Value,
		})
	}

	// Количество выдач: тот же файл, соединение по токену
	cnt := dedupeSeriesQuiet(normalizeTokenSeries(data.OriginationsCnt))
	if warning := leftJoin(rows, cnt, tolerance, func(r *models.ReconciledRow, v decimal.NullDecimal) {
		r.OriginationsCnt = v
	}); warning != "" {
		warnings = append(warnings, warning)
	}

	// Балансы: соединение по квартальному токену
	balances := dedupeSeries(normalizeTokenSeries(data.Balances), ledger)
	if warning := leftJoin(rows, balances, tolerance, func(r *models.ReconciledRow, v decimal.NullDecimal) {
		r.BalanceAmt = v
	}); warning != "" {
		warnings = append(warnings, warning)
	}

	// Ставка дефолта: вариантный выбор уже разрешен на фазе Extract —
	// квартальная серия по (год, квартал), годовой резерв по году,
	// при отсутствии обеих мера остается NULL
	if data.DefaultRate.Kind != models.DefaultRateAbsent {
		series := dedupeSeries(data.DefaultRate.Series, ledger)
		if warning := leftJoin(rows, series, tolerance, func(r *models.ReconciledRow, v decimal.NullDecimal) {
			r.DefaultRate = v
		}); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	// Прайм-ставка: соединение по квартальному ключу
	prime := dedupeSeries(data.PrimeRate, ledger)
	if warning := leftJoin(rows, prime, tolerance, func(r *models.ReconciledRow, v decimal.NullDecimal) {
		r.PrimeRate = v
	}); warning != "" {
		warnings = append(warnings, warning)
	}

	// Годовая ставка кредитования: соединение по году, значение
	// тиражируется на все четыре квартала года
	lending := dedupeSeries(data.LendingRate, ledger)
	if warning := leftJoin(rows, lending, tolerance, func(r *models.ReconciledRow, v decimal.NullDecimal) {
		r.LendingRate = v
	}); warning != "" {
		warnings = append(warnings, warning)
	}

	// Устойчивая сортировка по (год, квартал, квартальный ключ): два запуска
	// на неизменных входах дают побайтно одинаковый порядок строк
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].QuarterNum != rows[j].QuarterNum {
			return rows[i].QuarterNum < rows[j].QuarterNum
		}
		return rows[i].QuarterKey < rows[j].QuarterKey
	})

	return rows, warnings
}

// finalGrainDedupe отбрасывает строки, совпадающие по зерну таблицы фактов
// (квартальный ключ при фиксированных географии и продукте запуска),
// сохраняя первое вхождение
func finalGrainDedupe(rows []models.ReconciledRow, ledger *models.RejectLedger) ([]models.ReconciledRow, int) {
	deduped := make([]models.ReconciledRow, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	collisions := 0

	for _, row := range rows {
		if seen[row.QuarterKey] {
			collisions++
			ledger.Add(models.RejectRecord{
				Source:     "fact_grain",
				Reason:     models.ReasonFactGrainDuplicate,
				Quarter:    row.Quarter,
				Year:       row.Year,
				QuarterKey: row.QuarterKey,
			})
			continue
		}
		seen[row.QuarterKey] = true
		deduped = append(deduped, row)
	}

	return deduped, collisions
}

// nullDecimalString возвращает строковое представление значения для реестра
func nullDecimalString(value decimal.NullDecimal) string {
	if !value.Valid {
		return ""
	}
	return value.Decimal.String()
}
