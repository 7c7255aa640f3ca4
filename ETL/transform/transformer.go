package transform

import (
	"time"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// Transformer координирует фазу Transform: нормализация и дедупликация
// источников, слияние на каноническую квартальную сетку, шлюз качества,
// политика заполнения и финальная дедупликация по зерну фактов
type Transformer struct {
	logger          *utils.ETLLogger
	fanOutTolerance float64
	qualityGate     *QualityGate
	fillPolicy      *FillPolicy
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(logger *utils.ETLLogger, fanOutTolerance float64) *Transformer {
	return &Transformer{
		logger:          logger,
		fanOutTolerance: fanOutTolerance,
		qualityGate:     NewQualityGate(logger),
		fillPolicy:      NewFillPolicy(logger),
	}
}

// Transform выполняет полный процесс согласования источников.
// Реестр отказов — явная часть результата, а не разделяемое состояние.
func (t *Transformer) Transform(data *models.ExtractedData) (*models.TransformedData, error) {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Согласование источников)")

	result := &models.TransformedData{
		SourceRowCounts: data.SourceRowCounts(),
	}

	// 1. Нормализация, дедупликация и слияние на опорную сетку
	t.logger.Info("Слияние источников на квартальную сетку...")
	rows, warnings := mergeSources(data, t.fanOutTolerance, &result.Rejects)
	result.FanOutWarnings = warnings
	for _, warning := range warnings {
		// Фан-аут — диагностика, а не ошибка: вероятный дефект данных выше по потоку
		t.logger.Warn("%s", warning)
	}
	t.logger.Info("Сетка собрана: %d строк", len(rows))

	// 2. Шлюз качества: диапазоны и знаки
	t.logger.Info("Проверка качества значений...")
	t.qualityGate.Apply(rows, &result.Rejects)

	// 3. Заполнение пропусков макро-ставок в границах года
	t.logger.Info("Заполнение пропусков макро-ставок...")
	t.fillPolicy.Apply(rows)

	// 4. Финальная дедупликация по зерну таблицы фактов
	rows, collisions := finalGrainDedupe(rows, &result.Rejects)
	if collisions > 0 {
		t.logger.Warn("Обнаружено %d коллизий по зерну фактов", collisions)
	}
	result.GrainCollisions = collisions
	result.Rows = rows

	t.logger.LogStageComplete("Transform", time.Since(startTime))
	return result, nil
}
