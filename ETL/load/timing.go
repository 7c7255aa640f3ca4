package load

import (
	"database/sql"
	"fmt"
	"time"

	"creditdw/ETL/utils"
)

// TimingResult представляет результат замера одного контрольного запроса
type TimingResult struct {
	Name     string
	Duration time.Duration
	Rows     int
}

// Контрольные запросы послезагрузочной проверки времени отклика
var timingQueries = []struct {
	name  string
	query string
}{
	{
		name:  "fact_count",
		query: "SELECT COUNT(*) FROM fact_credit_metrics_qtr",
	},
	{
		name: "fact_date_join",
		query: `SELECT COUNT(*)
			FROM fact_credit_metrics_qtr f
			JOIN dim_date_qtr d ON d.quarter_key = f.quarter_key`,
	},
	{
		name: "yearly_aggregate",
		query: `SELECT COUNT(*) FROM (
			SELECT d.year
			FROM fact_credit_metrics_qtr f
			JOIN dim_date_qtr d ON d.quarter_key = f.quarter_key
			GROUP BY d.year
		) y`,
	},
}

// TimingChecker выполняет послезагрузочную проверку времени отклика
// хранилища на представительных запросах. Некритичный шаг:
// ошибка проверки не прерывает запуск.
type TimingChecker struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewTimingChecker создает новый экземпляр TimingChecker
func NewTimingChecker(db *sql.DB, logger *utils.ETLLogger) *TimingChecker {
	return &TimingChecker{
		db:     db,
		logger: logger,
	}
}

// Run замеряет контрольные запросы и логирует длительности
func (c *TimingChecker) Run() ([]TimingResult, error) {
	results := make([]TimingResult, 0, len(timingQueries))

	for _, tq := range timingQueries {
		startTime := time.Now()

		var rows int
		if err := c.db.QueryRow(tq.query).Scan(&rows); err != nil {
			return results, fmt.Errorf("ошибка контрольного запроса %s: %w", tq.name, err)
		}

		duration := time.Since(startTime)
		results = append(results, TimingResult{Name: tq.name, Duration: duration, Rows: rows})
		c.logger.Info("Контрольный запрос %s: %d строк за %v", tq.name, rows, duration)
	}

	return results, nil
}
