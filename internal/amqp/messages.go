package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BudgetSpentMessage carries a recomputed spent figure for one budget.
// The worker applies it to the budget's cached current_spent column; the
// ledger stays the source of truth, so replayed or stale messages are
// harmless.
type BudgetSpentMessage struct {
	BudgetID   uuid.UUID `json:"budget_id"`
	SpentCents int64     `json:"spent_cents"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewBudgetSpentMessage(budgetID uuid.UUID, spentCents int64) *BudgetSpentMessage {
	return &BudgetSpentMessage{
		BudgetID:   budgetID,
		SpentCents: spentCents,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetSpentMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func BudgetSpentMessageFromJSON(data []byte) (*BudgetSpentMessage, error) {
	var msg BudgetSpentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
