package load

import (
	"database/sql"
	"fmt"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// FactLoader отвечает за загрузку таблицы фактов fact_credit_metrics_qtr
type FactLoader struct {
	logger *utils.ETLLogger
}

// NewFactLoader создает новый экземпляр FactLoader
func NewFactLoader(logger *utils.ETLLogger) *FactLoader {
	return &FactLoader{
		logger: logger,
	}
}

// Load выполняет upsert строк фактов по составному ключу
// (quarter_key, geo_key, product_key). Каждая мера перезаписывается
// значением текущего запуска, включая перезапись NULL-ом:
// последний запуск авторитетен.
func (l *FactLoader) Load(tx *sql.Tx, rows []models.ReconciledRow, geoKey, productKey int64) (int, error) {
	if len(rows) == 0 {
		l.logger.Debug("Нет строк фактов для загрузки")
		return 0, nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO fact_credit_metrics_qtr (
			quarter_key, geo_key, product_key,
			originations_cnt, origination_amt, balance_amt,
			default_rate, prime_rate, lending_rate
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		originations_cnt = VALUES(originations_cnt),
		origination_amt = VALUES(origination_amt),
		balance_amt = VALUES(balance_amt),
		default_rate = VALUES(default_rate),
		prime_rate = VALUES(prime_rate),
		lending_rate = VALUES(lending_rate)
	`)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подготовке запроса фактов: %w", err)
	}
	defer stmt.Close()

	processed := 0
	for _, row := range rows {
		_, err := stmt.Exec(
			row.QuarterKey,
			geoKey,
			productKey,
			row.OriginationsCnt,
			row.OriginationAmt,
			row.BalanceAmt,
			row.DefaultRate,
			row.PrimeRate,
			row.LendingRate,
		)
		if err != nil {
			return processed, fmt.Errorf("ошибка при upsert факта для квартала %d: %w", row.QuarterKey, err)
		}
		processed++
	}

	l.logger.Info("Факты загружены: %d строк", processed)
	return processed, nil
}

// Clear удаляет все строки фактов (режим полного перестроения).
// Строки измерений никогда не удаляются — они только растут.
func (l *FactLoader) Clear(tx *sql.Tx) error {
	result, err := tx.Exec("DELETE FROM fact_credit_metrics_qtr")
	if err != nil {
		return fmt.Errorf("ошибка при очистке таблицы фактов: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		l.logger.Info("Таблица фактов очищена: удалено %d строк", affected)
	}
	return nil
}
