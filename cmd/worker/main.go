package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcastano/aeroops/config"
	"github.com/dcastano/aeroops/internal/email"
	"github.com/dcastano/aeroops/internal/kafka"
	"github.com/dcastano/aeroops/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	accountRepo := repository.NewAccountRepository(pool)
	emailSender := email.NewSender()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Run(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			return handleNotification(ctx, emailSender, msg)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	// Accounts whose external validation failed after the local commit stay
	// unactivated; the sweep re-notifies them instead of retrying inline.
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ActivationSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			cutoff := time.Now().Add(-time.Duration(cfg.Worker.UnactivatedAfterHours) * time.Hour)
			accounts, err := accountRepo.ListUnactivatedBefore(ctx, cutoff)
			if err != nil {
				log.Printf("list unactivated accounts: %v", err)
				continue
			}
			for _, account := range accounts {
				if err := emailSender.SendActivationReminder(ctx, account.Identifier); err != nil {
					log.Printf("activation reminder for %s: %v", account.Identifier, err)
				}
			}
			if len(accounts) > 0 {
				log.Printf("reminded %d unactivated accounts", len(accounts))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

// handleNotification fans incoming events out to the right email template.
// Unknown payloads are logged and dropped, never retried.
func handleNotification(ctx context.Context, sender *email.Sender, msg kafkaGo.Message) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Value, &probe); err != nil {
		log.Printf("decode event error: %v", err)
		return nil
	}

	switch probe.Type {
	case "account_registered", "account_activated":
		var event kafka.AccountEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode account event error: %v", err)
			return nil
		}
		return sender.SendAccountNotice(ctx, event)
	case "seats_reserved", "seats_released":
		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode booking event error: %v", err)
			return nil
		}
		return sender.SendBookingNotice(ctx, event)
	default:
		log.Printf("unknown event type %q", probe.Type)
		return nil
	}
}
