// main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"creditdw/ETL/config"
	"creditdw/routes"

	"github.com/gorilla/mux"
)

// RunOnce запускает конвейер один раз
func RunOnce(etlConfig config.ETLConfig, opts RunOptions) {
	runner, err := NewETLRunner(etlConfig)
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	defer runner.Close()

	if err := runner.ExecuteETL(opts); err != nil {
		log.Fatalf("Ошибка при выполнении ETL: %v", err)
	}
}

// RunScheduled запускает конвейер по расписанию
func RunScheduled(etlConfig config.ETLConfig, opts RunOptions) {
	// Создаем контекст, который будет отменен при получении сигнала завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настраиваем обработку сигналов завершения
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	// Запускаем горутину для обработки сигналов
	go func() {
		<-signalCh
		log.Println("Получен сигнал завершения. Останавливаем ETL Runner...")
		cancel()
	}()

	runner, err := NewETLRunner(etlConfig)
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	defer runner.Close()

	// Запускаем планировщик
	runner.StartScheduler(ctx, opts)
}

// RunTiming запускает только проверку времени отклика хранилища
func RunTiming(etlConfig config.ETLConfig) {
	runner, err := NewETLRunner(etlConfig)
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	defer runner.Close()

	if err := runner.RunTimingCheck(); err != nil {
		log.Fatalf("Ошибка при проверке времени отклика: %v", err)
	}

	log.Println("Проверка времени отклика успешно завершена")
}

// RunServe запускает HTTP API инспекции запусков ETL
func RunServe(etlConfig config.ETLConfig, addr string) {
	db, err := config.ConnectWarehouse(etlConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer config.CloseWarehouse(db)

	router := mux.NewRouter()
	routes.SetupRoutes(router, db, etlConfig.ReportDir)

	log.Printf("API инспекции запущен на %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Ошибка HTTP-сервера: %v", err)
	}
}

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "once", "Режим работы: once, scheduled, dry-run, timing или serve")
	recreatePtr := flag.Bool("recreate", false, "Очистить таблицу фактов перед загрузкой (полное перестроение)")
	validatePtr := flag.Bool("validate", false, "Сохранить снимок валидации после загрузки")
	debugPtr := flag.Bool("debug", false, "Включить детальное логирование")
	rawDirPtr := flag.String("raw-dir", "", "Каталог с исходными выгрузками")
	countryPtr := flag.String("country", "", "Страна для годовой ставки кредитования")
	addrPtr := flag.String("addr", ":8080", "Адрес HTTP API инспекции (только для режима serve)")

	flag.Parse()

	etlConfig := config.GetConfig()
	if *debugPtr {
		etlConfig.EnableDetailedLogging = true
	}
	if *rawDirPtr != "" {
		etlConfig.RawDir = *rawDirPtr
	}
	if *countryPtr != "" {
		etlConfig.Country = *countryPtr
	}

	opts := RunOptions{
		Recreate: *recreatePtr,
		Validate: *validatePtr,
	}

	log.Println("Запуск ETL Runner в режиме:", *modePtr)

	switch *modePtr {
	case "once":
		RunOnce(etlConfig, opts)
	case "scheduled":
		RunScheduled(etlConfig, opts)
	case "dry-run":
		opts.DryRun = true
		RunOnce(etlConfig, opts)
	case "timing":
		RunTiming(etlConfig)
	case "serve":
		RunServe(etlConfig, *addrPtr)
	default:
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: once, scheduled, dry-run, timing, serve")
		os.Exit(1)
	}

	log.Println("ETL Runner завершил работу")
}
