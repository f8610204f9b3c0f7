package main

import (
	"seatlease/internal/seats/handler"
	"seatlease/internal/seats/reaper"
	"seatlease/internal/seats/repository"
	"seatlease/internal/seats/service"
	"seatlease/internal/seats/validator"
	"seatlease/pkg/app"
	"seatlease/pkg/config"
	"seatlease/pkg/events"
)

const ServiceName = "seats"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting seat lease service")

	leaseRepo := repository.NewMongoLeaseRepository(cfg)
	leaseService := service.NewLeaseService(
		repository.NewMongoEventRepository(cfg),
		repository.NewMongoSeatRepository(cfg),
		repository.NewMongoCustomerRepository(cfg),
		leaseRepo,
		validator.NewLeaseValidator(),
		newPublisher(cfg),
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSeatHandler(leaseService, cfg.Log))
	serverApp.AddWorker(reaper.New(leaseRepo, cfg.ReaperInterval, cfg.Log).Run)
	serverApp.Run()
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, lease events disabled")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.KafkaTopic)
	return publisher
}
