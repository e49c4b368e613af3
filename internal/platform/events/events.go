// Package events ships committed ledger events to Redis pub/sub or Kafka.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
)

// envelope is the wire form shared by every sink. Amounts travel as fixed
// six-decimal strings.
type envelope struct {
	EventID      string `json:"eventId"`
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	Reference    string `json:"reference"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balanceAfter"`
	TransferID   string `json:"transferId,omitempty"`
	ToUserID     string `json:"toUserId,omitempty"`
	OccurredAt   string `json:"occurredAt"`
}

// Encode renders event as JSON.
func Encode(event domain.LedgerEvent) ([]byte, error) {
	payload, err := json.Marshal(envelope{
		EventID:      event.EventID,
		Type:         string(event.Type),
		UserID:       event.UserID,
		WalletID:     event.WalletID,
		Reference:    event.Reference,
		Amount:       domain.FormatAmount(event.Amount),
		BalanceAfter: domain.FormatAmount(event.BalanceAfter),
		TransferID:   event.TransferID,
		ToUserID:     event.ToUserID,
		OccurredAt:   event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return payload, nil
}
