package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventProductRegistered = "inventory.product.registered"
	EventProductDeleted    = "inventory.product.deleted"
	EventStockDebited      = "inventory.stock.debited"
	EventBatchExpiring     = "inventory.batch.expiring"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// ProductRegisteredEvent is published when stock is registered. NewProduct
// is true when the registration created the product itself, not just a batch.
type ProductRegisteredEvent struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	BatchID     string `json:"batch_id"`
	BatchCode   string `json:"batch_code"`
	Quantity    int    `json:"quantity"`
	NewProduct  bool   `json:"new_product"`
}

// ProductDeletedEvent is published when a product and its batches are removed
type ProductDeletedEvent struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
}

// StockDebitedEvent is published after a sale allocation ran. One event per
// allocation, carrying every batch debit it applied.
type StockDebitedEvent struct {
	ProductID   string       `json:"product_id"`
	ProductCode string       `json:"product_code"`
	Status      string       `json:"status"`
	Requested   int          `json:"requested"`
	Shortfall   int          `json:"shortfall,omitempty"`
	Debits      []BatchDebit `json:"debits"`
}

// BatchDebit is a single batch debit within a StockDebitedEvent
type BatchDebit struct {
	BatchID string `json:"batch_id"`
	Amount  int    `json:"amount"`
}

// BatchExpiringEvent is published by the expiry scanner for batches inside
// the alert horizon.
type BatchExpiringEvent struct {
	ProductName   string `json:"product_name"`
	BatchID       string `json:"batch_id"`
	DaysRemaining int    `json:"days_remaining"`
}
