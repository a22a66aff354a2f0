package services

import (
	"encoding/json"
	"log"
	"time"
)

// Event types published by the storefront.
const (
	EventOrderPlaced      = "order.placed"
	EventContactSubmitted = "contact.submitted"
)

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// publishEvent sends payload best-effort: failures are logged, never returned.
func publishEvent(publisher EventPublisher, eventType string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	payload["type"] = eventType
	payload["occurred_at"] = time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := publisher.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
