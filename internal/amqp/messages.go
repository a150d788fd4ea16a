package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseExportMessage is the lightweight message queued when an admin
// approves an expense. It carries only identifiers; the worker fetches the
// full record from storage before appending it to the export sink.
type ExpenseExportMessage struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseExportMessage creates an export message for one approved expense.
func NewExpenseExportMessage(id, orgID string) *ExpenseExportMessage {
	return &ExpenseExportMessage{
		ID:        id,
		OrgID:     orgID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseExportMessageFromJSON creates a message from JSON bytes.
func ExpenseExportMessageFromJSON(data []byte) (*ExpenseExportMessage, error) {
	var msg ExpenseExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
