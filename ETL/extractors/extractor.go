package extractors

import (
	"fmt"
	"path/filepath"
	"time"

	"creditdw/ETL/models"
	"creditdw/ETL/utils"
)

// Имена исходных файлов в каталоге выгрузок
const (
	FileOrigination = "25Q1-CreditCardOrigination.csv"
	FileBalances    = "25Q1-CreditCardBalances.csv"
	FileLoanDefault = "Loan_Default.csv"
	FilePrimeRate   = "DPRIME.csv"
	FileDefaultRate = "DRALACBN.csv"
	FileLendingXML  = "API_FR.INR.LEND_DS2_en_xml_v2_1223050.xml"
)

// Extractor координирует процесс извлечения данных из исходных выгрузок
type Extractor struct {
	logger       *utils.ETLLogger
	origination  *OriginationExtractor
	balances     *BalancesExtractor
	primeRate    *PrimeRateExtractor
	defaultRateQ *DefaultRateQuarterlyExtractor
	defaultRateY *DefaultRateYearlyExtractor
	lendingRate  *LendingRateExtractor
}

// NewExtractor создает новый экземпляр Extractor для каталога выгрузок
func NewExtractor(rawDir, country string, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		logger:       logger,
		origination:  NewOriginationExtractor(filepath.Join(rawDir, FileOrigination), logger),
		balances:     NewBalancesExtractor(filepath.Join(rawDir, FileBalances), logger),
		primeRate:    NewPrimeRateExtractor(filepath.Join(rawDir, FilePrimeRate), logger),
		defaultRateQ: NewDefaultRateQuarterlyExtractor(filepath.Join(rawDir, FileDefaultRate), logger),
		defaultRateY: NewDefaultRateYearlyExtractor(filepath.Join(rawDir, FileLoanDefault), logger),
		lendingRate:  NewLendingRateExtractor(filepath.Join(rawDir, FileLendingXML), country, logger),
	}
}

// Extract выполняет фазу извлечения: по одной серии на измерение.
// Отсутствующий источник дает пустую серию и деградацию меры до NULL,
// а не прерывание запуска.
func (e *Extractor) Extract() (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	data := &models.ExtractedData{}
	var err error

	// Выдачи: опорный источник сетки
	data.OriginationAmt, data.OriginationsCnt, err = e.origination.Extract()
	if err != nil {
		e.logger.Error("Ошибка при извлечении выдач: %v", err)
		return nil, fmt.Errorf("ошибка извлечения выдач: %w", err)
	}

	// Балансы
	data.Balances, err = e.balances.Extract()
	if err != nil {
		e.logger.Error("Ошибка при извлечении балансов: %v", err)
		return nil, fmt.Errorf("ошибка извлечения балансов: %w", err)
	}

	// Прайм-ставка
	data.PrimeRate, err = e.primeRate.Extract()
	if err != nil {
		e.logger.Error("Ошибка при извлечении прайм-ставки: %v", err)
		return nil, fmt.Errorf("ошибка извлечения прайм-ставки: %w", err)
	}

	// Ставка дефолта: квартальная серия предпочтительнее годового резерва;
	// выбор разрешается один раз здесь, а не внутри слияния
	quarterly, err := e.defaultRateQ.Extract()
	if err != nil {
		e.logger.Error("Ошибка при извлечении квартальной ставки дефолта: %v", err)
		return nil, fmt.Errorf("ошибка извлечения квартальной ставки дефолта: %w", err)
	}
	yearly := e.defaultRateY.Extract()
	data.DefaultRate = models.ResolveDefaultRate(quarterly, yearly)

	// Годовая ставка кредитования
	data.LendingRate = e.lendingRate.Extract()

	data.ExtractedAt = time.Now()
	e.logger.LogExtractComplete(data.SourceRowCounts(), time.Since(startTime))

	return data, nil
}
