package validator

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

const (
	ErrRequired        = "is required"
	ErrPaymentMethod   = "must be one of card, upi, netbanking, wallet"
	ErrSeatID          = "must be a seat identifier such as C7"
	ErrDefaultInvalid  = "is invalid"
	ErrMinLength       = "must be at least %s characters long"
	ErrMaxLength       = "must be at most %s characters long"
	ErrInvalidShowtime = "must be a valid showtime identifier"
)

var (
	seatIDRgx     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,15}$`)
	showtimeIDRgx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("payment_method", validatePaymentMethod)
	validator.RegisterValidation("seat_id", validateSeatID)
	validator.RegisterValidation("showtime_id", validateShowtimeID)

	return validator
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return slices.Contains(domain.PaymentMethods, domain.PaymentMethod(fl.Field().String()))
}

func validateSeatID(fl validator.FieldLevel) bool {
	return seatIDRgx.MatchString(fl.Field().String())
}

func validateShowtimeID(fl validator.FieldLevel) bool {
	return showtimeIDRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "payment_method":
		return ErrPaymentMethod
	case "seat_id":
		return ErrSeatID
	case "showtime_id":
		return ErrInvalidShowtime
	default:
		return ErrDefaultInvalid
	}
}
