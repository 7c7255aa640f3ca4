package load

import (
	"database/sql"
	"fmt"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// RejectLoader отвечает за материализацию реестра отказов в таблицу
// etl_rejects. Реестр пишется один раз за запуск и конвейером
// обратно не читается.
type RejectLoader struct {
	logger *utils.ETLLogger
}

// NewRejectLoader создает новый экземпляр RejectLoader
func NewRejectLoader(logger *utils.ETLLogger) *RejectLoader {
	return &RejectLoader{
		logger: logger,
	}
}

// Load записывает записи реестра отказов внутри транзакции запуска
func (l *RejectLoader) Load(tx *sql.Tx, runID string, ledger *models.RejectLedger) error {
	if ledger.Count() == 0 {
		l.logger.Debug("Реестр отказов пуст")
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO etl_rejects (run_id, source, reason, quarter, year, quarter_key, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("ошибка при подготовке запроса реестра отказов: %w", err)
	}
	defer stmt.Close()

	for _, rec := range ledger.Records {
		_, err := stmt.Exec(
			runID,
			rec.Source,
			rec.Reason,
			nullableString(rec.Quarter),
			nullableInt(rec.Year),
			nullableInt(rec.QuarterKey),
			nullableString(rec.Value),
		)
		if err != nil {
			return fmt.Errorf("ошибка при записи реестра отказов: %w", err)
		}
	}

	l.logger.Info("Реестр отказов материализован: %d записей", ledger.Count())
	return nil
}

// nullableString превращает пустую строку в NULL
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableInt превращает нулевое значение в NULL
func nullableInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
