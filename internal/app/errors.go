package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrNotFound       = "The requested resource not found"
	ErrValidation     = "One or more fields are invalid"
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

func (app *Application) newErrorResponse(r *http.Request, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.sendError(w, r, status, app.newErrorResponse(r, message))
}

func (app *Application) sendError(w http.ResponseWriter, r *http.Request, status int, resp any) {
	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, "You must be authenticated to access this resource")
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:   ErrValidation,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	for _, fieldErr := range validationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp)
}

// authRequiredResponse answers 401 with the sign-in page the client should
// send the user to.
func (app *Application) authRequiredResponse(w http.ResponseWriter, r *http.Request, message, redirectURL string) {
	base := app.newErrorResponse(r, message)

	resp := api.AuthRequiredResponse{
		Message:     base.Message,
		RedirectUrl: redirectURL,
		RequestId:   base.RequestId,
		Timestamp:   base.Timestamp,
	}

	app.sendError(w, r, http.StatusUnauthorized, resp)
}

func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, conflict *domain.SeatConflictError) {
	seatIDs := conflict.SeatIDs
	if seatIDs == nil {
		seatIDs = []string{}
	}

	base := app.newErrorResponse(r, conflict.Error())

	resp := api.SeatConflictResponse{
		Message:   base.Message,
		RequestId: base.RequestId,
		SeatIds:   seatIDs,
		Timestamp: base.Timestamp,
	}

	app.sendError(w, r, http.StatusConflict, resp)
}

// workflowErrorResponse translates the failure of a workflow operation into
// the response the client can act on. returnTo is where a user who has to
// sign in comes back to.
func (app *Application) workflowErrorResponse(w http.ResponseWriter, r *http.Request, err error, returnTo string) {
	var (
		authErr     *domain.AuthRequiredError
		conflictErr *domain.SeatConflictError
	)

	switch {
	case errors.As(err, &authErr):
		app.authRequiredResponse(w, r, domain.ErrAuthRequired.Error(), authErr.RedirectURL)

	// the booking service rejected the session itself
	case errors.Is(err, domain.ErrUnauthorized):
		app.authRequiredResponse(w, r, domain.ErrUnauthorized.Error(), app.identity.LoginURL(returnTo))

	case errors.As(err, &conflictErr):
		app.seatConflictResponse(w, r, conflictErr)

	case errors.Is(err, ErrWorkflowNotFound):
		app.errorResponse(w, r, http.StatusNotFound, ErrWorkflowNotFound.Error())

	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)

	case errors.Is(err, domain.ErrSeatNotFound):
		app.errorResponse(w, r, http.StatusNotFound, domain.ErrSeatNotFound.Error())

	case errors.Is(err, domain.ErrEmptySelection), errors.Is(err, domain.ErrCapacityExceeded):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, domain.ErrPaymentDeclined):
		app.errorResponse(w, r, http.StatusPaymentRequired, domain.ErrPaymentDeclined.Error())

	case errors.Is(err, domain.ErrTransient):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusServiceUnavailable, domain.ErrTransient.Error())

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSelectionLocked),
		errors.Is(err, domain.ErrSubmissionInProgress),
		errors.Is(err, domain.ErrPaymentCaptured),
		errors.Is(err, domain.ErrBookingNotUnpaid),
		errors.Is(err, domain.ErrPaymentRefunded),
		errors.Is(err, domain.ErrShowtimeUnavailable),
		errors.Is(err, domain.ErrWorkflowClosed):
		app.errorResponse(w, r, http.StatusConflict, err.Error())

	default:
		app.serverErrorResponse(w, r, err)
	}
}
