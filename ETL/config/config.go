package config

import (
	"os"
	"strconv"
	"time"
)

// ETLConfig содержит конфигурацию для ETL-процесса
type ETLConfig struct {
	// Конфигурация подключения к хранилищу (DW)
	Warehouse DatabaseConfig `json:"warehouse_config"`

	// Каталог с исходными файлами
	RawDir string `json:"raw_dir"`

	// Каталог для артефактов запуска (отчет качества, реестр отказов)
	ReportDir string `json:"report_dir"`

	// Страна для годовой ставки кредитования (World Bank XML)
	Country string `json:"country"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `json:"run_interval"`

	// Допуск прироста строк при соединении до предупреждения о фан-ауте
	FanOutTolerance float64 `json:"fan_out_tolerance"`

	// Включение/отключение детального логирования
	EnableDetailedLogging bool `json:"enable_detailed_logging"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// Значения конфигурации по умолчанию
var DefaultETLConfig = ETLConfig{
	Warehouse: DatabaseConfig{
		Driver:   "mysql",
		Host:     "127.0.0.1",
		Port:     3306,
		User:     "dw",
		Password: "DwPass!123",
		DBName:   "gosales_dw",
	},
	RawDir:                "source_raw",
	ReportDir:             "reports",
	Country:               "United States",
	RunInterval:           24 * time.Hour,
	FanOutTolerance:       0.01,
	EnableDetailedLogging: true,
}

// GetConfig возвращает конфигурацию ETL с учетом переменных окружения
func GetConfig() ETLConfig {
	config := DefaultETLConfig

	config.Warehouse.Host = envString("MYSQL_HOST", config.Warehouse.Host)
	config.Warehouse.Port = envInt("MYSQL_PORT", config.Warehouse.Port)
	config.Warehouse.User = envString("MYSQL_USER", config.Warehouse.User)
	config.Warehouse.Password = envString("MYSQL_PASS", config.Warehouse.Password)
	config.Warehouse.DBName = envString("MYSQL_DB", config.Warehouse.DBName)

	config.RawDir = envString("ETL_RAW_DIR", config.RawDir)
	config.ReportDir = envString("ETL_REPORT_DIR", config.ReportDir)

	return config
}

// envString возвращает значение переменной окружения или значение по умолчанию
func envString(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt возвращает целочисленное значение переменной окружения или значение по умолчанию
func envInt(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
