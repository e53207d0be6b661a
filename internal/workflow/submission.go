package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// Progress records how far a submission got. A booking that was created but
// not paid for is reused by the next attempt for the same seats and customer,
// and a charge that went through is never repeated.
type Progress struct {
	Booking *domain.BookingRecord  `json:"booking,omitempty"`
	Receipt *domain.PaymentReceipt `json:"receipt,omitempty"`

	// ChargeKey identifies the charge attempt for the booking. It survives
	// transient failures so the provider can answer a retry with the first
	// outcome, and is dropped after a decline so the next attempt is new.
	ChargeKey string `json:"chargeKey,omitempty"`
}

// Charged reports whether the customer has already paid for the booking.
func (p *Progress) Charged() bool {
	return p != nil && p.Receipt != nil
}

// Held reports whether the progress holds seats with an unpaid booking.
func (p *Progress) Held() bool {
	return p != nil && p.Booking != nil && p.Receipt == nil
}

type SubmitRequest struct {
	ShowtimeID string
	Seats      []domain.Seat
	Session    *domain.Session
	Method     domain.PaymentMethod
	Pending    *Progress
}

type Submitter struct {
	bookings domain.BookingService
	payments domain.PaymentProvider
	currency string
	logger   *slog.Logger
}

func NewSubmitter(
	bookings domain.BookingService,
	payments domain.PaymentProvider,
	currency string,
	logger *slog.Logger,
) *Submitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Submitter{
		bookings: bookings,
		payments: payments,
		currency: currency,
		logger:   logger,
	}
}

// Submit books the seats, charges the total and confirms the payment with the
// booking service. The returned progress is never nil, so on failure it tells
// the caller what a retry can skip. Errors are one of SeatConflictError,
// ErrUnauthorized, ErrPaymentDeclined, ErrBookingNotUnpaid,
// ErrPaymentRefunded or ErrTransient.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*Progress, error) {
	progress := &Progress{}

	if req.Session == nil || req.Session.UserID == "" {
		return progress, domain.ErrUnauthorized
	}

	if len(req.Seats) == 0 {
		return progress, domain.ErrEmptySelection
	}

	seatIDs := make([]string, len(req.Seats))
	for i, seat := range req.Seats {
		seatIDs[i] = seat.ID
	}

	logger := s.logger.With("showtime_id", req.ShowtimeID, "user_id", req.Session.UserID)

	switch {
	case reusable(req.Pending, req.ShowtimeID, req.Session.UserID, seatIDs):
		*progress = *req.Pending
	case req.Pending.Held():
		// the selection or the customer changed since the booking was made
		if err := s.release(ctx, req.Pending.Booking); err != nil {
			logger.Warn("could not release previous booking", "booking_id", req.Pending.Booking.BookingID, "error", err)
			return req.Pending, classify(err)
		}
	}

	if progress.Booking == nil {
		booking, err := s.bookings.CreateBooking(ctx, domain.BookingRequest{
			ShowtimeID: req.ShowtimeID,
			SeatIDs:    seatIDs,
			Customer:   *req.Session,
		})
		if err != nil {
			logger.Warn("booking creation failed", "error", err)
			return progress, classify(err)
		}

		if booking.CustomerID == "" {
			booking.CustomerID = req.Session.UserID
		}

		progress.Booking = booking
	}

	logger = logger.With("booking_id", progress.Booking.BookingID)

	if !progress.Charged() {
		if progress.ChargeKey == "" {
			progress.ChargeKey = progress.Booking.BookingID + "-" + uuid.NewString()
		}

		total := domain.ComputePricing(req.Seats).Total

		receipt, err := s.payments.Charge(ctx, domain.ChargeRequest{
			BookingID:      progress.Booking.BookingID,
			Amount:         total,
			Currency:       s.currency,
			Method:         req.Method,
			CustomerEmail:  req.Session.Email,
			IdempotencyKey: progress.ChargeKey,
		})
		if err != nil {
			logger.Warn("payment charge failed", "error", err)

			if errors.Is(err, domain.ErrPaymentDeclined) {
				progress.ChargeKey = ""
			}

			return progress, classify(err)
		}

		progress.Receipt = receipt
	}

	customerID := progress.Booking.CustomerID

	err := s.bookings.ConfirmPayment(ctx, progress.Booking.Ref(), domain.PaymentConfirmation{
		CustomerID:    customerID,
		TransactionID: progress.Receipt.TransactionID,
		Method:        progress.Receipt.Method,
		PaidAmount:    progress.Receipt.Amount,
	})
	if errors.Is(err, domain.ErrBookingNotUnpaid) {
		return s.settle(ctx, progress, logger)
	}

	if err != nil {
		logger.Error("payment captured but booking confirmation failed",
			"transaction_id", progress.Receipt.TransactionID,
			"error", err)
		return progress, classify(err)
	}

	logger.Info("booking confirmed", "transaction_id", progress.Receipt.TransactionID)

	return progress, nil
}

// settle handles a charged booking the service would not confirm. A booking
// that turns out to be paid already is the confirmation that got lost.
// Anything else, such as an expired hold, means the charge has to go back.
func (s *Submitter) settle(ctx context.Context, progress *Progress, logger *slog.Logger) (*Progress, error) {
	stored, err := s.bookings.GetBooking(ctx, progress.Booking.Ref(), progress.Booking.CustomerID)
	if err == nil && stored.IsPaid() {
		if stored.TheaterName == "" {
			stored.TheaterName = progress.Booking.TheaterName
		}

		progress.Booking = stored
		logger.Info("booking was already confirmed", "transaction_id", progress.Receipt.TransactionID)

		return progress, nil
	}

	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		logger.Error("could not look up unconfirmed booking", "error", err)
		return progress, classify(err)
	}

	if err := s.payments.Refund(ctx, *progress.Receipt); err != nil {
		logger.Error("booking could not be confirmed and the refund failed",
			"transaction_id", progress.Receipt.TransactionID,
			"error", err)
		return progress, classify(err)
	}

	logger.Warn("booking could not be confirmed, payment refunded",
		"transaction_id", progress.Receipt.TransactionID)

	return &Progress{}, domain.ErrPaymentRefunded
}

// Abandon gives back what an unfinished submission holds. An unpaid booking
// is cancelled, and a charge whose booking was never confirmed is refunded
// first. A booking the service did confirm is left alone.
func (s *Submitter) Abandon(ctx context.Context, pending *Progress) error {
	if pending == nil || pending.Booking == nil {
		return nil
	}

	logger := s.logger.With("booking_id", pending.Booking.BookingID)

	if pending.Charged() {
		stored, err := s.bookings.GetBooking(ctx, pending.Booking.Ref(), pending.Booking.CustomerID)
		if err == nil && stored.IsPaid() {
			logger.Info("abandoned booking was already confirmed, keeping the payment",
				"transaction_id", pending.Receipt.TransactionID)
			return nil
		}

		if err := s.payments.Refund(ctx, *pending.Receipt); err != nil {
			logger.Error("refund of abandoned booking failed", "transaction_id", pending.Receipt.TransactionID, "error", err)
			return classify(err)
		}

		logger.Info("abandoned booking refunded", "transaction_id", pending.Receipt.TransactionID)
	}

	if err := s.release(ctx, pending.Booking); err != nil {
		// the hold runs out on its own
		logger.Warn("could not release abandoned booking", "error", err)
	}

	return nil
}

func (s *Submitter) release(ctx context.Context, booking *domain.BookingRecord) error {
	err := s.bookings.CancelBooking(ctx, booking.Ref(), booking.CustomerID)
	if errors.Is(err, domain.ErrBookingNotUnpaid) {
		return nil
	}

	return err
}

// reusable reports whether a retry can continue with the pending progress.
// A charge is always continued; an unpaid booking only for the same showtime,
// seats and customer.
func reusable(pending *Progress, showtimeID, customerID string, seatIDs []string) bool {
	if pending == nil || pending.Booking == nil {
		return false
	}

	if pending.Charged() {
		return true
	}

	owner := pending.Booking.CustomerID

	return pending.Booking.ShowtimeID == showtimeID &&
		(owner == "" || owner == customerID) &&
		pending.Booking.Covers(seatIDs)
}

// classify maps collaborator failures to the categories the workflow knows how
// to recover from.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrSeatConflict),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrPaymentDeclined),
		errors.Is(err, domain.ErrBookingNotUnpaid),
		errors.Is(err, domain.ErrPaymentRefunded),
		errors.Is(err, domain.ErrShowtimeUnavailable),
		errors.Is(err, domain.ErrTransient):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
}
