package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// MockBookingService answers with the configured funcs. Without a func
// GetBooking finds nothing and CancelBooking has nothing to release.
type MockBookingService struct {
	CreateBookingFunc  func(ctx context.Context, req domain.BookingRequest) (*domain.BookingRecord, error)
	GetBookingFunc     func(ctx context.Context, bookingID string, customerID string) (*domain.BookingRecord, error)
	ConfirmPaymentFunc func(ctx context.Context, bookingID string, confirmation domain.PaymentConfirmation) error
	CancelBookingFunc  func(ctx context.Context, bookingID string, customerID string) error
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingRecord, error) {
	return m.CreateBookingFunc(ctx, req)
}

func (m *MockBookingService) GetBooking(
	ctx context.Context,
	bookingID string,
	customerID string) (*domain.BookingRecord, error) {

	if m.GetBookingFunc == nil {
		return nil, domain.ErrRecordNotFound
	}

	return m.GetBookingFunc(ctx, bookingID, customerID)
}

func (m *MockBookingService) ConfirmPayment(
	ctx context.Context,
	bookingID string,
	confirmation domain.PaymentConfirmation) error {

	return m.ConfirmPaymentFunc(ctx, bookingID, confirmation)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, customerID string) error {
	if m.CancelBookingFunc == nil {
		return domain.ErrBookingNotUnpaid
	}

	return m.CancelBookingFunc(ctx, bookingID, customerID)
}
