package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound = errors.New("record not found")

	ErrEmptySelection   = errors.New("please select at least one seat")
	ErrCapacityExceeded = fmt.Errorf("you can select maximum %d seats", MaxSelectedSeats)
	ErrSeatNotFound     = errors.New("seat does not belong to the showtime")

	ErrAuthRequired = errors.New("sign in required to continue booking")
	ErrUnauthorized = errors.New("please login to complete booking")

	ErrTransient        = errors.New("the booking service could not be reached, please try again")
	ErrSeatConflict     = errors.New("some of the selected seats are no longer available")
	ErrPaymentDeclined  = errors.New("the payment was declined")
	ErrBookingNotUnpaid = errors.New("booking not found or already paid")
	ErrPaymentRefunded  = errors.New("the booking could not be confirmed and the payment was refunded")

	ErrShowtimeUnavailable = errors.New("showtime is not available for booking")

	ErrInvalidTransition    = errors.New("operation is not allowed in the current booking step")
	ErrSelectionLocked      = errors.New("seat selection can only change while selecting seats")
	ErrSubmissionInProgress = errors.New("a booking submission is already in progress")
	ErrWorkflowClosed       = errors.New("the booking workflow is no longer active")
	ErrPaymentCaptured      = errors.New("payment was already taken for this booking, please complete it")
)

// SeatConflictError reports seats that another booker claimed first. SeatIDs
// is empty when the booking service did not say which seats were taken.
type SeatConflictError struct {
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	if len(e.SeatIDs) == 0 {
		return ErrSeatConflict.Error()
	}

	return fmt.Sprintf("%s: %s", ErrSeatConflict.Error(), strings.Join(e.SeatIDs, ", "))
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}

// AuthRequiredError carries the sign-in page the user has to be sent to.
type AuthRequiredError struct {
	RedirectURL string
}

func (e *AuthRequiredError) Error() string {
	return ErrAuthRequired.Error()
}

func (e *AuthRequiredError) Unwrap() error {
	return ErrAuthRequired
}
