// Package payment talks to the card payment gateway.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// SaleOptions controls how a sale is processed.
type SaleOptions struct {
	SubmitForSettlement bool `json:"submitForSettlement"`
}

// SaleRequest charges a tokenized payment method.
type SaleRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethodNonce string          `json:"paymentMethodNonce"`
	Options            SaleOptions     `json:"options"`
}

// Transaction is the gateway's view of a processed sale.
type Transaction struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// Error is a failure reported by the gateway itself, as opposed to a
// transport problem.
type Error struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

// Gateway is the subset of gateway operations the storefront needs.
type Gateway interface {
	// ClientToken issues a short-lived token for the client payment widget.
	ClientToken(ctx context.Context) (string, error)
	// Sale charges the nonce. A declined sale returns *Error.
	Sale(ctx context.Context, req SaleRequest) (*Transaction, error)
	// Void reverses a transaction that has not settled yet.
	Void(ctx context.Context, transactionID string) error
}
