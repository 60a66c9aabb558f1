package main

import (
	"context"
	"log"

	"loghive-be/internal/bootstrap"
	"loghive-be/internal/config"
	"loghive-be/internal/model"
	"loghive-be/internal/server"
	"loghive-be/internal/tracer"
	"loghive-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.LogRecord{}); err != nil {
		log.Panicf("Unable to migrate log_records: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Alert Consumer...")
		if err := container.AlertConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Alert Consumer Error: %v", err)
		}
	}()
	go container.RetentionService.Run(context.Background())

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
