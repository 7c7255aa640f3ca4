package load

import (
	"database/sql"
	"fmt"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// DateLoader отвечает за загрузку измерения дат dim_date_qtr
type DateLoader struct {
	logger *utils.ETLLogger
}

// NewDateLoader создает новый экземпляр DateLoader
func NewDateLoader(logger *utils.ETLLogger) *DateLoader {
	return &DateLoader{
		logger: logger,
	}
}

// BuildDateRows собирает строки измерения дат: по одной на каждый
// различный квартальный ключ сетки, порядок ввода сохраняется
func BuildDateRows(rows []models.ReconciledRow) []models.DimDateQtrRow {
	seen := make(map[int]bool, len(rows))
	dateRows := make([]models.DimDateQtrRow, 0, len(rows))

	for _, row := range rows {
		if seen[row.QuarterKey] {
			continue
		}
		seen[row.QuarterKey] = true
		dateRows = append(dateRows, models.DimDateQtrRow{
			QuarterKey:   row.QuarterKey,
			Year:         row.Year,
			Quarter:      row.QuarterNum,
			QuarterStart: row.QuarterStart,
			QuarterEnd:   row.QuarterEnd,
		})
	}

	return dateRows
}

// Load выполняет идемпотентный upsert измерения дат внутри транзакции.
// Повторный upsert существующего ключа перезаписывает производные поля:
// вывод чистый, поэтому операция идемпотентна.
func (l *DateLoader) Load(tx *sql.Tx, dateRows []models.DimDateQtrRow) error {
	if len(dateRows) == 0 {
		l.logger.Debug("Нет строк измерения дат для загрузки")
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO dim_date_qtr (quarter_key, year, quarter, quarter_start, quarter_end)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		year = VALUES(year),
		quarter = VALUES(quarter),
		quarter_start = VALUES(quarter_start),
		quarter_end = VALUES(quarter_end)
	`)
	if err != nil {
		return fmt.Errorf("ошибка при подготовке запроса измерения дат: %w", err)
	}
	defer stmt.Close()

	for _, row := range dateRows {
		_, err := stmt.Exec(
			row.QuarterKey,
			row.Year,
			row.Quarter,
			row.QuarterStart.Format("2006-01-02"),
			row.QuarterEnd.Format("2006-01-02"),
		)
		if err != nil {
			return fmt.Errorf("ошибка при upsert измерения дат для ключа %d: %w", row.QuarterKey, err)
		}
	}

	l.logger.Info("Измерение дат загружено: %d кварталов", len(dateRows))
	return nil
}
