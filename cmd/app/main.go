package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcastano/aeroops/config"
	"github.com/dcastano/aeroops/internal/bootstrap"
	"github.com/dcastano/aeroops/internal/cache"
	"github.com/dcastano/aeroops/internal/client"
	"github.com/dcastano/aeroops/internal/hash"
	"github.com/dcastano/aeroops/internal/kafka"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/dcastano/aeroops/internal/service/auth"
	"github.com/dcastano/aeroops/internal/service/catalog"
	"github.com/dcastano/aeroops/internal/service/flights"
	"github.com/dcastano/aeroops/internal/service/trips"
	"github.com/dcastano/aeroops/internal/token"
	"github.com/dcastano/aeroops/internal/txn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.TripsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	coordinator := txn.NewCoordinator(pool)
	coordinator.Register(repository.EntityAccount, repository.NewAccountExecutor())
	coordinator.Register(repository.EntityFlight, repository.NewFlightExecutor())
	coordinator.Register(repository.EntityTrip, repository.NewTripExecutor())
	coordinator.Register(repository.EntityAirport, repository.NewAirportExecutor())
	coordinator.Register(repository.EntityPilot, repository.NewPilotExecutor())
	coordinator.Register(repository.EntityFare, repository.NewFareExecutor())
	coordinator.Register(repository.EntityCard, repository.NewCardExecutor())

	signer := token.NewJWTSigner(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	hasher := hash.NewBcryptHasher()
	validator := client.NewHTTPValidator(cfg.Activation)

	accountRepo := repository.NewAccountRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	tripRepo := repository.NewTripRepository(pool)
	airportRepo := repository.NewAirportRepository(pool)
	pilotRepo := repository.NewPilotRepository(pool)
	fareRepo := repository.NewFareRepository(pool)
	cardRepo := repository.NewCardRepository(pool)

	authService := auth.NewAuthService(accountRepo, coordinator, hasher, validator, signer, producer, cfg.Kafka.NotificationsTopic, cfg.Auth.DefaultRole)
	flightService := flights.NewFlightService(flightRepo, coordinator)
	tripService := trips.NewTripService(tripRepo, coordinator, redisCache, producer, cfg.Kafka.NotificationsTopic, time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute)

	services := bootstrap.Services{
		Auth:     authService,
		Flights:  flightService,
		Trips:    tripService,
		Airports: catalog.NewAirportService(airportRepo, coordinator),
		Pilots:   catalog.NewPilotService(pilotRepo, coordinator),
		Fares:    catalog.NewFareService(fareRepo, coordinator),
		Cards:    catalog.NewCardService(cardRepo, coordinator),
		Signer:   signer,
	}

	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
