package models

import (
	"time"
)

// ETLRunLog представляет запись журнала о запуске ETL
type ETLRunLog struct {
	ID              int
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	Status          string // 'success', 'failed', 'in_progress'
	RowsProcessed   int
	RejectsRecorded int
	FactsUpserted   int
	ErrorMessage    string
}

// ETLLogRepository определяет интерфейс для работы с журналом запусков ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если она не существует
	CreateETLLogTable() error

	// CreateLogEntry создает новую запись о запуске ETL
	CreateLogEntry(runID string, startTime time.Time) (int, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении
	UpdateLogEntrySuccess(id int, endTime time.Time, rowsProcessed, rejectsRecorded, factsUpserted int) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении
	UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun возвращает последний успешный запуск
	GetLastSuccessfulRun() (*ETLRunLog, error)
}
