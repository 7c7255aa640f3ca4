package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// ETLLogger представляет логгер для ETL-процесса хранилища кредитных метрик
type ETLLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	warnLogger  *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
}

// NewETLLogger создает новый экземпляр логгера для ETL
func NewETLLogger(verbose bool) *ETLLogger {
	// Создаем или открываем лог-файл для записи
	currentTime := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("etl_dw_log_%s.log", currentTime)

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Не удалось открыть или создать файл лога: %v", err)
	}

	// Инициализируем логгеры для разных уровней
	infoLogger := log.New(file, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger := log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	warnLogger := log.New(file, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger := log.New(file, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)

	return &ETLLogger{
		infoLogger:  infoLogger,
		errorLogger: errorLogger,
		warnLogger:  warnLogger,
		debugLogger: debugLogger,
		isVerbose:   verbose,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("INFO:", msg)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("ERROR:", msg)
}

// Warn логирует предупреждение (аномалии данных, не прерывающие процесс)
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.warnLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("WARN:", msg)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("DEBUG:", msg)
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart(runID string) {
	l.Info("Начало выполнения ETL-процесса, запуск %s", runID)
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, rows, rejects, facts int) {
	duration := time.Since(startTime)
	l.Info("ETL-процесс завершён. Длительность: %v", duration)
	l.Info("Обработано: %d строк, %d записей в реестре отказов, %d строк фактов", rows, rejects, facts)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(sourceCounts map[string]int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	for source, count := range sourceCounts {
		l.Info("Извлечено из источника %s: %d строк", source, count)
	}
}

// LogStageComplete логирует завершение стадии конвейера
func (l *ETLLogger) LogStageComplete(stage string, duration time.Duration) {
	l.Info("Стадия %s завершена. Длительность: %v", stage, duration)
}
