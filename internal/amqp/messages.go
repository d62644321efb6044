package amqp

import (
	"encoding/json"
	"time"
)

// Record kinds carried by archive messages.
const (
	KindIncome   = "income"
	KindExpense  = "expense"
	KindCustomer = "customer"
)

// RecordAppendedMessage announces a row that was confirmed by the record
// store, so the archive worker can mirror it into SQLite. Fields are the
// exact store row in schema column order.
type RecordAppendedMessage struct {
	Kind      string    `json:"kind"`
	Fields    []string  `json:"fields"`
	Token     string    `json:"token,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordAppendedMessage creates an archive message for one appended row.
func NewRecordAppendedMessage(kind string, fields []string, token string) *RecordAppendedMessage {
	return &RecordAppendedMessage{
		Kind:      kind,
		Fields:    fields,
		Token:     token,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordAppendedMessageFromJSON creates a message from JSON bytes
func RecordAppendedMessageFromJSON(data []byte) (*RecordAppendedMessage, error) {
	var msg RecordAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
