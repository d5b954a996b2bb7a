package main

import (
	"log"

	"github.com/mvshop/orchestration-service/config"
	"github.com/mvshop/orchestration-service/internal/app"
)

func main() {
	cfg := config.Load()

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации приложения: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Ошибка работы приложения: %v", err)
	}
}
