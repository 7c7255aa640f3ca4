package load

import (
	"database/sql"
	"fmt"
	"time"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// Естественные ключи измерений одного запуска: вся история метрик
// относится к потребительским кредитным картам США
var (
	defaultGeoCountry  = "United States"
	defaultProductCode = "ALL"
	defaultProductType = "Credit Card"
	defaultSegment     = "Consumer"
)

// LoadOptions определяет параметры фазы Load для одного запуска
type LoadOptions struct {
	RunID    string
	Recreate bool
	Validate bool
	Country  string
}

// LoadResult содержит итоги фазы Load
type LoadResult struct {
	FactsUpserted  int
	DimDateRows    int
	DimGeoRows     int
	DimProductRows int
	FactRows       int
}

// LoadManager отвечает за управление фазой Load: все записи измерений
// и фактов одного запуска выполняются в одной транзакции, так что
// сбой на полпути оставляет хранилище в состоянии до запуска
type LoadManager struct {
	db           *sql.DB
	logger       *utils.ETLLogger
	dateLoader   *DateLoader
	dimLoader    *DimensionLoader
	factLoader   *FactLoader
	rejectLoader *RejectLoader
	validation   *ValidationLoader
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(db *sql.DB, logger *utils.ETLLogger) *LoadManager {
	return &LoadManager{
		db:           db,
		logger:       logger,
		dateLoader:   NewDateLoader(logger),
		dimLoader:    NewDimensionLoader(logger),
		factLoader:   NewFactLoader(logger),
		rejectLoader: NewRejectLoader(logger),
		validation:   NewValidationLoader(logger),
	}
}

// Load выполняет фазу загрузки: измерение дат раньше фактов
// (ссылочный порядок), затем факты, реестр отказов и, по запросу,
// снимок валидации. Повторный запуск на неизменных входах не меняет
// таблицу фактов.
func (m *LoadManager) Load(data *models.TransformedData, opts LoadOptions) (*LoadResult, error) {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	tx, err := m.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	// Режим полного перестроения: факты очищаются в той же транзакции,
	// неудачное перестроение не теряет прежние факты
	if opts.Recreate {
		m.logger.Info("Режим recreate: очистка таблицы фактов перед загрузкой")
		if err := m.factLoader.Clear(tx); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// 1. Измерение дат
	dateRows := BuildDateRows(data.Rows)
	if err := m.dateLoader.Load(tx, dateRows); err != nil {
		tx.Rollback()
		return nil, err
	}

	// 2. Суррогатные ключи географии и продукта
	country := opts.Country
	if country == "" {
		country = defaultGeoCountry
	}
	geoKey, err := m.dimLoader.GetOrCreateGeo(tx,
		sql.NullString{String: country, Valid: true},
		sql.NullString{},
		sql.NullString{},
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	productKey, err := m.dimLoader.GetOrCreateProduct(tx,
		sql.NullString{String: defaultProductCode, Valid: true},
		sql.NullString{String: defaultProductType, Valid: true},
		sql.NullString{String: defaultSegment, Valid: true},
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// 3. Факты
	factsUpserted, err := m.factLoader.Load(tx, data.Rows, geoKey, productKey)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// 4. Реестр отказов
	if err := m.rejectLoader.Load(tx, opts.RunID, &data.Rejects); err != nil {
		tx.Rollback()
		return nil, err
	}

	// 5. Снимок валидации (по запросу)
	if opts.Validate {
		if err := m.validation.Snapshot(tx, opts.RunID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	result := &LoadResult{FactsUpserted: factsUpserted}
	tableCounts := []struct {
		table string
		dest  *int
	}{
		{"dim_date_qtr", &result.DimDateRows},
		{"dim_geo", &result.DimGeoRows},
		{"dim_product", &result.DimProductRows},
		{"fact_credit_metrics_qtr", &result.FactRows},
	}
	for _, c := range tableCounts {
		if err := tx.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("ошибка при подсчете строк %s: %w", c.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	m.logger.Info("Итог хранилища: dim_date=%d, dim_geo=%d, dim_product=%d, fact=%d",
		result.DimDateRows, result.DimGeoRows, result.DimProductRows, result.FactRows)
	m.logger.LogStageComplete("Load", time.Since(startTime))

	return result, nil
}
