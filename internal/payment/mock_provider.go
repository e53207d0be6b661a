package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// MockPaymentProvider approves every charge without moving money. It is used
// when no Stripe key is configured and by the integration tests.
type MockPaymentProvider struct {
	mu      sync.Mutex
	charges []domain.ChargeRequest
	refunds []domain.PaymentReceipt
	decline bool
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.PaymentReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.charges = append(m.charges, req)

	if m.decline {
		return nil, domain.ErrPaymentDeclined
	}

	return &domain.PaymentReceipt{
		TransactionID: "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]),
		Amount:        req.Amount,
		Method:        req.Method,
	}, nil
}

func (m *MockPaymentProvider) Refund(ctx context.Context, receipt domain.PaymentReceipt) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.refunds = append(m.refunds, receipt)

	return nil
}

// SetDecline makes every following charge fail as declined.
func (m *MockPaymentProvider) SetDecline(decline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.decline = decline
}

func (m *MockPaymentProvider) Charges() []domain.ChargeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	charges := make([]domain.ChargeRequest, len(m.charges))
	copy(charges, m.charges)

	return charges
}

func (m *MockPaymentProvider) Refunds() []domain.PaymentReceipt {
	m.mu.Lock()
	defer m.mu.Unlock()

	refunds := make([]domain.PaymentReceipt, len(m.refunds))
	copy(refunds, m.refunds)

	return refunds
}
