// routes/api_routes.go
package routes

import (
	"database/sql"

	"creditdw/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes настраивает маршруты API инспекции запусков ETL
func SetupRoutes(router *mux.Router, db *sql.DB, reportDir string) {
	// Применяем CORS middleware
	router.Use(middleware.CORSMiddleware)

	// Состояние сервиса и подключения к хранилищу
	router.HandleFunc("/health", HealthHandler(db)).Methods("GET", "OPTIONS")

	// Последняя сводка качества
	router.HandleFunc("/api/report/latest", LatestReportHandler(reportDir)).Methods("GET", "OPTIONS")

	// Последний запуск из журнала ETL
	router.HandleFunc("/api/runs/latest", LatestRunHandler(db)).Methods("GET", "OPTIONS")
}
