package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodUPI,
	PaymentMethodNetBanking,
	PaymentMethodWallet,
}

type ChargeRequest struct {
	BookingID     string
	Amount        decimal.Decimal
	Currency      string
	Method        PaymentMethod
	CustomerEmail string

	// IdempotencyKey identifies one charge attempt. Retrying with the same key
	// never takes the money twice.
	IdempotencyKey string
}

type PaymentReceipt struct {
	TransactionID string
	Amount        decimal.Decimal
	Method        PaymentMethod
}

type PaymentConfirmation struct {
	CustomerID    string
	TransactionID string
	Method        PaymentMethod
	PaidAmount    decimal.Decimal
}

type PaymentProvider interface {
	Charge(ctx context.Context, req ChargeRequest) (*PaymentReceipt, error)
	// Refund gives back the whole amount of a charge.
	Refund(ctx context.Context, receipt PaymentReceipt) error
}
