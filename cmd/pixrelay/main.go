package main

import (
	"context"
	"log"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/app"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Создаём и настраиваем приложение через DI container
	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Запускаем сервис, блокируется до graceful shutdown
	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
