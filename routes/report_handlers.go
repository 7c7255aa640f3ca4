package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"creditdw/ETL/report"
)

// HealthHandler возвращает обработчик проверки состояния сервиса
func HealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}

		if err := db.Ping(); err != nil {
			status["status"] = "degraded"
			status["warehouse"] = err.Error()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

// LatestReportHandler возвращает обработчик последней сводки качества
func LatestReportHandler(reportDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := report.ReadLatestReport(reportDir)
		if err != nil {
			http.Error(w, "сводка качества еще не создана", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}
}

// latestRunResponse — ответ API о последнем запуске ETL
type latestRunResponse struct {
	RunID           string    `json:"run_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	RowsProcessed   int       `json:"rows_processed"`
	RejectsRecorded int       `json:"rejects_recorded"`
	FactsUpserted   int       `json:"facts_upserted"`
}

// LatestRunHandler возвращает обработчик последнего запуска из журнала ETL
func LatestRunHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp latestRunResponse
		err := db.QueryRow(`
			SELECT run_id, start_time, COALESCE(end_time, start_time), status,
				rows_processed, rejects_recorded, facts_upserted
			FROM etl_run_log
			ORDER BY id DESC
			LIMIT 1
		`).Scan(
			&resp.RunID,
			&resp.StartTime,
			&resp.EndTime,
			&resp.Status,
			&resp.RowsProcessed,
			&resp.RejectsRecorded,
			&resp.FactsUpserted,
		)

		if err == sql.ErrNoRows {
			http.Error(w, "запусков ETL еще не было", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
