// Package mailer sends the emails a customer gets about their bookings.
package mailer

import (
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// BookingConfirmationTemplate is rendered with a BookingConfirmation once a
// booking is paid for.
const BookingConfirmationTemplate = "booking_confirmation.tmpl"

// Mailer delivers templateFile, rendered with data, to recipient.
type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

// BookingConfirmation is what the customer needs at the entrance.
type BookingConfirmation struct {
	CustomerName  string
	BookingID     string
	TheaterName   string
	ShowTime      time.Time
	Seats         []string
	Amount        string
	Currency      string
	TransactionID string
}

func NewBookingConfirmation(booking *domain.BookingRecord, customerName, currency string, receipt *domain.PaymentReceipt) BookingConfirmation {
	c := BookingConfirmation{
		CustomerName: booking.CustomerName,
		BookingID:    booking.BookingID,
		TheaterName:  booking.TheaterName,
		ShowTime:     booking.ShowTime,
		Seats:        booking.SeatIDs,
		Currency:     currency,
	}

	if c.CustomerName == "" {
		c.CustomerName = customerName
	}

	if receipt != nil {
		c.Amount = receipt.Amount.StringFixed(2)
		c.TransactionID = receipt.TransactionID
	}

	return c
}

func (c BookingConfirmation) ShowTimeLabel() string {
	return c.ShowTime.Format("Mon, 02 Jan 2006 15:04")
}

func (c BookingConfirmation) SeatList() string {
	return strings.Join(c.Seats, ", ")
}
