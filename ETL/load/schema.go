package load

import (
	"database/sql"
	"fmt"
)

// DDL хранилища: измерения, факты и служебные таблицы ETL.
// Измерение дат пишется раньше фактов, внешние ключи закрепляют
// ссылочный порядок на уровне движка.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dim_date_qtr (
		quarter_key INT PRIMARY KEY,
		year INT NOT NULL,
		quarter TINYINT NOT NULL,
		quarter_start DATE NOT NULL,
		quarter_end DATE NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS dim_geo (
		geo_key INT AUTO_INCREMENT PRIMARY KEY,
		country VARCHAR(64) NULL,
		state_province VARCHAR(64) NULL,
		city VARCHAR(64) NULL,
		UNIQUE KEY uq_geo (country, state_province, city)
	);`,

	`CREATE TABLE IF NOT EXISTS dim_product (
		product_key INT AUTO_INCREMENT PRIMARY KEY,
		product_code VARCHAR(64) NULL,
		product_type VARCHAR(64) NULL,
		segment VARCHAR(64) NULL,
		UNIQUE KEY uq_prod (product_code, product_type, segment)
	);`,

	`CREATE TABLE IF NOT EXISTS fact_credit_metrics_qtr (
		quarter_key INT NOT NULL,
		geo_key INT NOT NULL,
		product_key INT NOT NULL,
		originations_cnt DECIMAL(20, 4) NULL,
		origination_amt DECIMAL(20, 4) NULL,
		balance_amt DECIMAL(20, 4) NULL,
		default_rate DECIMAL(12, 8) NULL,
		prime_rate DECIMAL(12, 8) NULL,
		lending_rate DECIMAL(12, 8) NULL,
		PRIMARY KEY (quarter_key, geo_key, product_key),
		CONSTRAINT fk_fact_date FOREIGN KEY (quarter_key) REFERENCES dim_date_qtr (quarter_key),
		CONSTRAINT fk_fact_geo FOREIGN KEY (geo_key) REFERENCES dim_geo (geo_key),
		CONSTRAINT fk_fact_product FOREIGN KEY (product_key) REFERENCES dim_product (product_key)
	);`,

	`CREATE TABLE IF NOT EXISTS etl_rejects (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id CHAR(36) NOT NULL,
		source VARCHAR(64) NOT NULL,
		reason VARCHAR(64) NOT NULL,
		quarter VARCHAR(16) NULL,
		year INT NULL,
		quarter_key INT NULL,
		value VARCHAR(64) NULL,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_rejects_run (run_id)
	);`,

	`CREATE TABLE IF NOT EXISTS etl_validation_snapshots (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id CHAR(36) NOT NULL,
		taken_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		fact_rows INT NOT NULL,
		dim_date_rows INT NOT NULL,
		dim_geo_rows INT NOT NULL,
		dim_product_rows INT NOT NULL,
		originations_cnt_null_rate FLOAT,
		origination_amt_null_rate FLOAT,
		balance_amt_null_rate FLOAT,
		default_rate_null_rate FLOAT,
		prime_rate_null_rate FLOAT,
		lending_rate_null_rate FLOAT,
		range_violations INT NOT NULL DEFAULT 0
	);`,
}

// CreateWarehouseSchema создает таблицы хранилища, если они не существуют
func CreateWarehouseSchema(db *sql.DB) error {
	for _, statement := range schemaStatements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("ошибка при создании схемы хранилища: %w", err)
		}
	}
	return nil
}
