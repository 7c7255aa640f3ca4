package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"creditdw/ETL/config"
	"creditdw/ETL/extractors"
	"creditdw/ETL/load"
	"creditdw/ETL/models"
	"creditdw/ETL/report"
	"creditdw/ETL/transform"
	"creditdw/ETL/utils"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

// RunOptions определяет параметры одного запуска конвейера
type RunOptions struct {
	DryRun   bool
	Recreate bool
	Validate bool
}

// ETLRunner связывает фазы конвейера согласования и загрузки
type ETLRunner struct {
	config      config.ETLConfig
	db          *sql.DB
	logger      *utils.ETLLogger
	extractor   *extractors.Extractor
	transformer *transform.Transformer
	loadManager *load.LoadManager
	artifacts   *report.ArtifactWriter
	etlLogRepo  models.ETLLogRepository
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(etlConfig config.ETLConfig) (*ETLRunner, error) {
	// Инициализируем логгер
	logger := utils.NewETLLogger(etlConfig.EnableDetailedLogging)
	logger.Info("Инициализация ETL Runner")

	// Подключаемся к базе данных хранилища
	db, err := config.ConnectWarehouse(etlConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Создаем схему хранилища, если она еще не существует
	if err := load.CreateWarehouseSchema(db); err != nil {
		config.CloseWarehouse(db)
		return nil, fmt.Errorf("ошибка при создании схемы хранилища: %w", err)
	}

	// Инициализируем репозиторий журнала запусков ETL
	etlLogRepo := models.NewMySQLETLLogRepository(db)
	if err := etlLogRepo.CreateETLLogTable(); err != nil {
		config.CloseWarehouse(db)
		return nil, fmt.Errorf("ошибка при создании таблицы журнала ETL: %w", err)
	}

	return &ETLRunner{
		config:      etlConfig,
		db:          db,
		logger:      logger,
		extractor:   extractors.NewExtractor(etlConfig.RawDir, etlConfig.Country, logger),
		transformer: transform.NewTransformer(logger, etlConfig.FanOutTolerance),
		loadManager: load.NewLoadManager(db, logger),
		artifacts:   report.NewArtifactWriter(etlConfig.ReportDir, logger),
		etlLogRepo:  etlLogRepo,
	}, nil
}

// Close закрывает соединение с базой данных хранилища
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	config.CloseWarehouse(r.db)
}

// ExecuteETL выполняет полный конвейер согласования и загрузки.
// Каждый запуск — полный пересчет всей доступной истории источников.
func (r *ETLRunner) ExecuteETL(opts RunOptions) error {
	startTime := time.Now()
	runID := uuid.New().String()
	r.logger.LogETLStart(runID)

	// Создаем запись в журнале ETL
	logID, err := r.etlLogRepo.CreateLogEntry(runID, startTime)
	if err != nil {
		r.logger.Error("Ошибка при создании записи в журнале ETL: %v", err)
		return fmt.Errorf("ошибка при создании записи в журнале ETL: %w", err)
	}

	// 1. Фаза извлечения данных (Extract)
	extractedData, err := r.extractor.Extract()
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Extract: %v", err)
		r.logger.Error(errMsg)
		r.markFailure(logID, errMsg)
		return fmt.Errorf("ошибка в фазе Extract: %w", err)
	}

	// 2. Фаза согласования (Transform): нормализация, дедупликация,
	// слияние, шлюз качества, заполнение, финальная дедупликация
	transformedData, err := r.transformer.Transform(extractedData)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Transform: %v", err)
		r.logger.Error(errMsg)
		r.markFailure(logID, errMsg)
		return fmt.Errorf("ошибка в фазе Transform: %w", err)
	}

	// 3. Артефакты запуска: сводка качества и реестр отказов.
	// Некритичный шаг — конвейер их обратно не читает.
	summary := report.BuildQualitySummary(runID, transformedData)
	if _, err := r.artifacts.WriteQualityReport(summary); err != nil {
		r.logger.Error("Ошибка при записи сводки качества: %v", err)
	}
	if _, err := r.artifacts.WriteRejectLedger(runID, &transformedData.Rejects); err != nil {
		r.logger.Error("Ошибка при записи реестра отказов: %v", err)
	}

	// 4. Dry-run завершает запуск до начала транзакции загрузки
	if opts.DryRun {
		r.logger.Info("Dry-run: загрузка в хранилище пропущена")
		r.markSuccess(logID, len(transformedData.Rows), transformedData.Rejects.Count(), 0)
		r.logger.LogETLComplete(startTime, len(transformedData.Rows), transformedData.Rejects.Count(), 0)
		return nil
	}

	// 5. Фаза загрузки данных (Load)
	loadResult, err := r.loadManager.Load(transformedData, load.LoadOptions{
		RunID:    runID,
		Recreate: opts.Recreate,
		Validate: opts.Validate,
		Country:  r.config.Country,
	})
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Load: %v", err)
		r.logger.Error(errMsg)
		r.markFailure(logID, errMsg)
		return fmt.Errorf("ошибка в фазе Load: %w", err)
	}

	r.markSuccess(logID, len(transformedData.Rows), transformedData.Rejects.Count(), loadResult.FactsUpserted)
	r.logger.LogETLComplete(startTime, len(transformedData.Rows), transformedData.Rejects.Count(), loadResult.FactsUpserted)
	return nil
}

// RunTimingCheck выполняет послезагрузочную проверку времени отклика хранилища
func (r *ETLRunner) RunTimingCheck() error {
	r.logger.Info("Запуск проверки времени отклика хранилища")
	_, err := load.NewTimingChecker(r.db, r.logger).Run()
	return err
}

// markSuccess обновляет запись журнала при успешном завершении
func (r *ETLRunner) markSuccess(logID, rows, rejects, facts int) {
	if err := r.etlLogRepo.UpdateLogEntrySuccess(logID, time.Now(), rows, rejects, facts); err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
	}
}

// markFailure обновляет запись журнала при неудачном завершении
func (r *ETLRunner) markFailure(logID int, errorMessage string) {
	if err := r.etlLogRepo.UpdateLogEntryFailure(logID, time.Now(), errorMessage); err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
	}
}

// StartScheduler запускает планировщик для регулярного выполнения ETL
func (r *ETLRunner) StartScheduler(ctx context.Context, opts RunOptions) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if err := r.ExecuteETL(opts); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})

	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
}
