// Command event-seeder publishes synthetic platform events to NATS for
// local development and load testing of the triage service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
)

var normalEventTypes = []string{
	"login_success",
	"login_failed",
	"payment_succeeded",
	"order_created",
	"order_shipped",
	"user_registered",
	"password_changed",
	"cart_abandoned",
}

type platformEvent struct {
	EventType string  `json:"event_type"`
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	IPAddress string  `json:"ip_address"`
	Timestamp string  `json:"timestamp"`
}

func main() {
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS server URL")
	subject := flag.String("subject", "events.platform", "subject to publish events to")
	count := flag.Int("count", 100, "number of events to publish")
	criticalRatio := flag.Float64("critical-ratio", 0.1, "fraction of events that are payment_failed")
	interval := flag.Duration("interval", 50*time.Millisecond, "delay between events")
	seed := flag.Int64("seed", 0, "random seed (0 for time-based)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)
	rng := rand.New(rand.NewSource(*seed))

	js, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:           *natsURL,
		Name:          "event-seeder",
		MaxReconnects: 3,
		ReconnectWait: time.Second,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer js.Close()

	ctx := context.Background()
	if _, err := js.CreateOrUpdateStream(ctx, natsclient.PlatformEventsStream); err != nil {
		log.Fatalf("Failed to ensure platform events stream: %v", err)
	}

	log.Printf("Publishing %d events to %s (critical ratio %.0f%%)", *count, *subject, *criticalRatio*100)

	var critical int
	for i := 0; i < *count; i++ {
		event := fakeEvent(rng, *criticalRatio)
		if event.EventType == "payment_failed" {
			critical++
		}

		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		if _, err := js.PublishSync(ctx, *subject, data); err != nil {
			log.Fatalf("Failed to publish event %d: %v", i+1, err)
		}

		if (i+1)%50 == 0 {
			log.Printf("Published %d/%d events", i+1, *count)
		}

		time.Sleep(*interval)
	}

	log.Printf("Done: %d events published (%d payment_failed)", *count, critical)
}

func fakeEvent(rng *rand.Rand, criticalRatio float64) platformEvent {
	event := platformEvent{
		UserID:    gofakeit.UUID(),
		Email:     gofakeit.Email(),
		IPAddress: gofakeit.IPv4Address(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if rng.Float64() < criticalRatio {
		event.EventType = "payment_failed"
		event.Amount = gofakeit.Price(5, 500)
		event.Currency = gofakeit.CurrencyShort()
		return event
	}

	event.EventType = normalEventTypes[rng.Intn(len(normalEventTypes))]
	if event.EventType == "payment_succeeded" {
		event.Amount = gofakeit.Price(5, 500)
		event.Currency = gofakeit.CurrencyShort()
	}
	return event
}
