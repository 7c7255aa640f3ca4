package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"

	"github.com/golang/snappy"
)

// Имя файла с последней сводкой качества для HTTP-инспекции
const LatestReportFile = "quality_report_latest.json"

// ArtifactWriter отвечает за запись артефактов запуска:
// сводки качества и сжатого реестра отказов
type ArtifactWriter struct {
	dir    string
	logger *utils.ETLLogger
}

// NewArtifactWriter создает новый экземпляр ArtifactWriter
func NewArtifactWriter(dir string, logger *utils.ETLLogger) *ArtifactWriter {
	return &ArtifactWriter{
		dir:    dir,
		logger: logger,
	}
}

// WriteQualityReport записывает сводку качества в JSON-файл запуска
// и обновляет файл последней сводки
func (w *ArtifactWriter) WriteQualityReport(summary *QualitySummary) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка при создании каталога артефактов: %w", err)
	}

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка при сериализации сводки качества: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("quality_report_%s.json", summary.RunID))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("ошибка при записи сводки качества: %w", err)
	}

	// Копия под фиксированным именем для HTTP-инспекции
	latest := filepath.Join(w.dir, LatestReportFile)
	if err := os.WriteFile(latest, payload, 0644); err != nil {
		return "", fmt.Errorf("ошибка при записи последней сводки качества: %w", err)
	}

	w.logger.Info("Сводка качества записана: %s", path)
	return path, nil
}

// WriteRejectLedger записывает реестр отказов запуска, сжатый snappy
func (w *ArtifactWriter) WriteRejectLedger(runID string, ledger *models.RejectLedger) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка при создании каталога артефактов: %w", err)
	}

	payload, err := json.Marshal(ledger)
	if err != nil {
		return "", fmt.Errorf("ошибка при сериализации реестра отказов: %w", err)
	}

	compressed := snappy.Encode(nil, payload)
	path := filepath.Join(w.dir, fmt.Sprintf("reject_ledger_%s.json.snappy", runID))
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return "", fmt.Errorf("ошибка при записи реестра отказов: %w", err)
	}

	w.logger.Info("Реестр отказов записан: %s (%d записей, %d байт сжато)",
		path, ledger.Count(), len(compressed))
	return path, nil
}

// ReadRejectLedger читает и распаковывает реестр отказов из артефакта
func ReadRejectLedger(path string) (*models.RejectLedger, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении реестра отказов: %w", err)
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("ошибка при распаковке реестра отказов: %w", err)
	}

	var ledger models.RejectLedger
	if err := json.Unmarshal(payload, &ledger); err != nil {
		return nil, fmt.Errorf("ошибка при разборе реестра отказов: %w", err)
	}
	return &ledger, nil
}

// ReadLatestReport возвращает JSON последней сводки качества
func ReadLatestReport(dir string) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, LatestReportFile))
}
