// sendevent signs a checkout.session.completed event with the local webhook
// secret and delivers it to a running webhook receiver.
// Run: go run ./cmd/sendevent -email you@example.com
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82/webhook"
)

func main() {
	target := flag.String("url", "http://localhost:8081/stripe-webhook", "webhook endpoint")
	addr := flag.String("email", "", "customer email to put in customer_details")
	eventType := flag.String("type", domain.EventCheckoutCompleted, "event type")
	flag.Parse()

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET is not set")
	}

	payload, err := json.Marshal(map[string]any{
		"id":      "evt_local_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		"object":  "event",
		"type":    *eventType,
		"created": time.Now().Unix(),
		"data": map[string]any{
			"object": map[string]any{
				"object":           "checkout.session",
				"customer_details": map[string]any{"email": *addr},
			},
		},
	})
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	req, err := http.NewRequest(http.MethodPost, *target, strings.NewReader(string(payload)))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("deliver: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%d %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
}
