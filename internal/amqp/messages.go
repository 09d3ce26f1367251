package amqp

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// SyncRequestMessage asks the worker to reconcile the listed entities
// ("categories", "expenses", "expense_images"). An empty list means all.
type SyncRequestMessage struct {
	Entities  []string  `json:"entities,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncRequestMessage(reason string, entities ...string) *SyncRequestMessage {
	return &SyncRequestMessage{
		Entities:  entities,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Wants reports whether entity should be reconciled for this request.
func (m *SyncRequestMessage) Wants(entity string) bool {
	return len(m.Entities) == 0 || slices.Contains(m.Entities, entity)
}

// ToJSON converts the message to JSON bytes
func (m *SyncRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncRequestMessageFromJSON(data []byte) (*SyncRequestMessage, error) {
	var msg SyncRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal sync request: %w", err)
	}
	return &msg, nil
}
