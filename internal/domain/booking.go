package domain

import (
	"context"
	"slices"
	"time"
)

type BookingRequest struct {
	ShowtimeID string
	SeatIDs    []string
	Customer   Session
}

// BookingRecord is issued by the booking service and kept as received.
type BookingRecord struct {
	// ID is the service's own record identifier when it differs from the
	// customer facing BookingID.
	ID            string
	BookingID     string
	ShowtimeID    string
	ShowTime      time.Time
	SeatIDs       []string
	TheaterName   string
	// CustomerID is the user the booking is held for. Only that user can pay
	// for or cancel it.
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	PaymentStatus PaymentStatus
}

// Ref returns the identifier the booking service expects back when the
// booking is paid for.
func (b *BookingRecord) Ref() string {
	if b.ID != "" {
		return b.ID
	}

	return b.BookingID
}

func (b *BookingRecord) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusCompleted
}

// Covers reports whether the booking holds exactly the given seats.
func (b *BookingRecord) Covers(seatIDs []string) bool {
	if len(b.SeatIDs) != len(seatIDs) {
		return false
	}

	for _, id := range seatIDs {
		if !slices.Contains(b.SeatIDs, id) {
			return false
		}
	}

	return true
}

type BookingService interface {
	// CreateBooking claims the seats for the customer. It fails with a
	// SeatConflictError when any seat is no longer available and with
	// ErrUnauthorized when the customer is not recognised.
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingRecord, error)
	// GetBooking returns the booking as the service currently sees it.
	GetBooking(ctx context.Context, bookingID string, customerID string) (*BookingRecord, error)
	ConfirmPayment(ctx context.Context, bookingID string, confirmation PaymentConfirmation) error
	// CancelBooking releases the seats of an unpaid booking. It fails with
	// ErrBookingNotUnpaid when the booking is gone or was paid for.
	CancelBooking(ctx context.Context, bookingID string, customerID string) error
}
