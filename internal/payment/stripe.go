package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

var minorUnits = decimal.NewFromInt(100)

// StripePaymentProvider charges through a confirmed PaymentIntent. The
// attempt's idempotency key is passed on, so Stripe answers a retried attempt
// with the original outcome.
type StripePaymentProvider struct {
	paymentMethodID string
	newIntent       func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	newRefund       func(*stripe.RefundParams) (*stripe.Refund, error)
}

// NewStripePaymentProvider expects stripe.Key to be set. paymentMethodID is the
// stored Stripe payment method charged for every booking.
func NewStripePaymentProvider(paymentMethodID string) *StripePaymentProvider {
	return &StripePaymentProvider{
		paymentMethodID: paymentMethodID,
		newIntent:       paymentintent.New,
		newRefund:       refund.New,
	}
}

func (s *StripePaymentProvider) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.PaymentReceipt, error) {
	amount := req.Amount.Round(2).Mul(minorUnits).IntPart()
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrPaymentDeclined)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(s.paymentMethodID),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(fmt.Sprintf("Booking %s", req.BookingID)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{
			"booking_id":     req.BookingID,
			"payment_method": string(req.Method),
		},
	}

	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}

	params.Context = ctx

	key := req.IdempotencyKey
	if key == "" {
		key = "booking-" + req.BookingID
	}
	params.SetIdempotencyKey(key)

	intent, err := s.newIntent(params)
	if err != nil {
		return nil, stripeError(err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", domain.ErrPaymentDeclined, intent.ID, intent.Status)
	}

	return &domain.PaymentReceipt{
		TransactionID: intent.ID,
		Amount:        req.Amount,
		Method:        req.Method,
	}, nil
}

func (s *StripePaymentProvider) Refund(ctx context.Context, receipt domain.PaymentReceipt) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(receipt.TransactionID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}

	params.Context = ctx
	params.SetIdempotencyKey("refund-" + receipt.TransactionID)

	r, err := s.newRefund(params)
	if err != nil {
		return stripeError(err)
	}

	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		return fmt.Errorf("refund %s for payment intent %s is %s", r.ID, receipt.TransactionID, r.Status)
	}

	return nil
}

func stripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, stripeErr.Msg)
	case stripeErr.HTTPStatusCode >= 500 || stripeErr.HTTPStatusCode == 429:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	default:
		return err
	}
}
