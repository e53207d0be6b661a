package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/events"
	"github.com/metinatakli/cinex-booking/internal/mailer"
)

const publishTimeout = 5 * time.Second

// notifyBookingConfirmed mails the customer and publishes the booking event in
// the background. Failures are logged and never undo the booking.
func (app *Application) notifyBookingConfirmed(r *http.Request, booking *domain.BookingRecord, receipt *domain.PaymentReceipt) {
	if booking == nil {
		return
	}

	logger := app.contextGetLogger(r).With("booking_id", booking.BookingID)

	var customer domain.Session
	if session := app.currentSession(r); session != nil {
		customer = *session
	}

	if app.mailer != nil {
		recipient := booking.CustomerEmail
		if recipient == "" {
			recipient = customer.Email
		}

		data := mailer.NewBookingConfirmation(booking, customer.Name, app.config.Currency, receipt)

		if recipient != "" {
			app.background(logger, func() {
				err := app.mailer.Send(recipient, mailer.BookingConfirmationTemplate, data)
				if err != nil {
					logger.Error("failed to send booking confirmation", "error", err)
				}
			})
		}
	}

	if app.publisher != nil {
		event := events.NewBookingConfirmed(booking, customer, receipt, time.Now())

		app.background(logger, func() {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()

			err := app.publisher.PublishBookingConfirmed(ctx, event)
			if err != nil {
				logger.Error("failed to publish booking confirmed event", "error", err)
			}
		})
	}
}
