package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const submissionTimeout = 25 * time.Second

// loadWorkflow restores the workflow of the session with the auth gate of the
// current request and marks it processing while a submission holds its lock.
func (app *Application) loadWorkflow(r *http.Request) (*workflow.Workflow, error) {
	wf, err := app.restoreWorkflow(r)
	if err != nil {
		return nil, err
	}

	locked, err := app.store.Locked(r.Context(), wf.ID())
	if err != nil {
		return nil, err
	}

	if locked {
		wf.MarkSubmitting()
	}

	return wf, nil
}

// restoreWorkflow reads the snapshot of the session. A snapshot that cannot
// be restored is dropped.
func (app *Application) restoreWorkflow(r *http.Request) (*workflow.Workflow, error) {
	token := app.sessionManager.Token(r.Context())

	snap, err := app.store.Load(r.Context(), token)
	if err == nil && snap.Showtime == nil {
		err = workflow.ErrCorruptSnapshot
	}

	var wf *workflow.Workflow
	if err == nil {
		wf, err = workflow.Restore(*snap, app.newGate(r, snap.Showtime.ShowtimeID), app.submitter)
	}

	if errors.Is(err, workflow.ErrCorruptSnapshot) {
		app.contextGetLogger(r).Error("dropping booking workflow", "error", err)

		if err := app.store.Delete(r.Context(), token); err != nil {
			return nil, err
		}

		return nil, ErrWorkflowNotFound
	}

	return wf, err
}

// lockWorkflow claims the submission lock of the session's workflow and
// returns the workflow as it was stored once the lock was held.
func (app *Application) lockWorkflow(r *http.Request, workflowID string) (*workflow.Workflow, func(), error) {
	unlock, err := app.store.Lock(r.Context(), workflowID)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if err := unlock(context.WithoutCancel(r.Context())); err != nil {
			app.contextGetLogger(r).Error("failed to release submission lock", "workflow_id", workflowID, "error", err)
		}
	}

	wf, err := app.restoreWorkflow(r)
	if err == nil && wf.ID() != workflowID {
		err = domain.ErrWorkflowClosed
	}

	if err != nil {
		release()
		return nil, nil, err
	}

	return wf, release, nil
}

// discardWorkflow gives back the seats and any payment the workflow holds.
// The workflow must be locked.
func (app *Application) discardWorkflow(r *http.Request, wf *workflow.Workflow) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), submissionTimeout)
	defer cancel()

	return wf.Discard(ctx)
}

func (app *Application) saveWorkflow(r *http.Request, wf *workflow.Workflow) error {
	return app.store.Save(r.Context(), app.sessionManager.Token(r.Context()), wf.Snapshot())
}

// StartWorkflow opens a workflow for the showtime. A workflow the session
// already has for the same showtime is resumed. Any other one is replaced,
// which cancels its unpaid booking.
func (app *Application) StartWorkflow(w http.ResponseWriter, r *http.Request, showtimeID string) {
	logger := app.contextGetLogger(r)

	if err := app.validator.Var(showtimeID, "showtime_id"); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid showtime ID"))
		return
	}

	existing, err := app.loadWorkflow(r)
	switch {
	case errors.Is(err, ErrWorkflowNotFound):
	case err != nil:
		app.serverErrorResponse(w, r, err)
		return
	case existing.ShowtimeID() == showtimeID && existing.State() != workflow.StateConfirmed:
		app.writeWorkflow(w, r, http.StatusOK, existing)
		return
	default:
		old, unlock, err := app.lockWorkflow(r, existing.ID())
		if err != nil {
			app.workflowErrorResponse(w, r, err, seatMapPath(existing.ShowtimeID()))
			return
		}
		defer unlock()

		if err := app.discardWorkflow(r, old); err != nil {
			app.workflowErrorResponse(w, r, err, seatMapPath(old.ShowtimeID()))
			return
		}

		logger.Info("replacing booking workflow",
			"workflow_id", old.ID(),
			"old_showtime_id", old.ShowtimeID(),
			"showtime_id", showtimeID)
	}

	wf, err := workflow.Start(r.Context(), app.catalog, showtimeID, app.newGate(r, showtimeID), app.submitter)
	if err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(showtimeID))
		return
	}

	if err := app.saveWorkflow(r, wf); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.metrics.workflowsStarted.Add(r.Context(), 1)
	logger.Info("booking workflow started", "workflow_id", wf.ID(), "showtime_id", showtimeID)

	app.writeWorkflow(w, r, http.StatusCreated, wf)
}

func (app *Application) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := app.loadWorkflow(r)
	if err != nil {
		app.workflowErrorResponse(w, r, err, "/")
		return
	}

	app.writeWorkflow(w, r, http.StatusOK, wf)
}

// AbandonWorkflow cancels the unpaid booking of the workflow, refunds a
// charge that was never confirmed and tears the workflow down. It is refused
// while a submission runs.
func (app *Application) AbandonWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, unlock, ok := app.claimWorkflow(w, r)
	if !ok {
		return
	}
	defer unlock()

	if err := app.discardWorkflow(r, wf); err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(wf.ShowtimeID()))
		return
	}

	err := app.store.Delete(r.Context(), app.sessionManager.Token(r.Context()))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("booking workflow abandoned", "workflow_id", wf.ID())

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) ToggleSeat(w http.ResponseWriter, r *http.Request, seatID string) {
	if err := app.validator.Var(seatID, "seat_id"); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid seat ID"))
		return
	}

	wf, err := app.loadWorkflow(r)
	if err != nil {
		app.workflowErrorResponse(w, r, err, "/")
		return
	}

	result, err := wf.Toggle(seatID)
	if err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(wf.ShowtimeID()))
		return
	}

	if result != domain.ToggleIgnored {
		if err := app.saveWorkflow(r, wf); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	resp := api.ToggleSeatResponse{
		Result:   result.String(),
		Workflow: toWorkflowResponse(wf.View()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ClearSeats(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, (*workflow.Workflow).ClearSelection)
}

// AdvanceWorkflow moves on to payment. A guest gets 401 with the sign-in page
// to redirect to.
func (app *Application) AdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	app.transition(w, r, (*workflow.Workflow).Advance)
}

// BackWorkflow returns to seat selection. It holds the submission lock so a
// payment cannot start while the workflow turns around.
func (app *Application) BackWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, unlock, ok := app.claimWorkflow(w, r)
	if !ok {
		return
	}
	defer unlock()

	if err := wf.Back(); err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(wf.ShowtimeID()))
		return
	}

	if err := app.saveWorkflow(r, wf); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeWorkflow(w, r, http.StatusOK, wf)
}

// claimWorkflow loads and locks the workflow of the session, answering the
// request itself when that fails.
func (app *Application) claimWorkflow(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, func(), bool) {
	wf, err := app.restoreWorkflow(r)
	if err != nil {
		app.workflowErrorResponse(w, r, err, "/")
		return nil, nil, false
	}

	locked, unlock, err := app.lockWorkflow(r, wf.ID())
	if err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(wf.ShowtimeID()))
		return nil, nil, false
	}

	return locked, unlock, true
}

func (app *Application) transition(w http.ResponseWriter, r *http.Request, step func(*workflow.Workflow) error) {
	wf, err := app.loadWorkflow(r)
	if err != nil {
		app.workflowErrorResponse(w, r, err, "/")
		return
	}

	if err := step(wf); err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(wf.ShowtimeID()))
		return
	}

	if err := app.saveWorkflow(r, wf); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeWorkflow(w, r, http.StatusOK, wf)
}

// SubmitPayment books and pays for the selection. Only one submission per
// workflow runs at a time, and its outcome is kept only if the session still
// holds the same workflow when it finishes.
func (app *Application) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.PaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	wf, unlock, ok := app.claimWorkflow(w, r)
	if !ok {
		return
	}
	defer unlock()

	returnTo := seatMapPath(wf.ShowtimeID())
	logger = logger.With("workflow_id", wf.ID())

	// a client that goes away must not strand a charge halfway
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), submissionTimeout)
	defer cancel()

	booking, submitErr := wf.SubmitPayment(ctx, workflow.PaymentDetails{
		Method: domain.PaymentMethod(input.PaymentMethod),
	})

	app.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", submissionOutcome(submitErr))))

	err = app.store.SaveIfCurrent(ctx, app.sessionManager.Token(r.Context()), wf.Snapshot())
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowClosed) {
			logger.Warn("booking workflow was abandoned during submission, discarding the outcome",
				"submit_error", submitErr)
			app.workflowErrorResponse(w, r, domain.ErrWorkflowClosed, returnTo)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if submitErr != nil {
		app.workflowErrorResponse(w, r, submitErr, returnTo)
		return
	}

	receipt, _ := wf.Receipt()
	app.notifyBookingConfirmed(r, booking, receipt)

	app.writeWorkflow(w, r, http.StatusOK, wf)
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case errors.Is(err, domain.ErrSeatConflict):
		return "seat_conflict"
	case errors.Is(err, domain.ErrPaymentDeclined):
		return "declined"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrPaymentRefunded):
		return "refunded"
	case errors.Is(err, domain.ErrTransient):
		return "transient"
	default:
		return "rejected"
	}
}

func (app *Application) writeWorkflow(w http.ResponseWriter, r *http.Request, status int, wf *workflow.Workflow) {
	err := app.writeJSON(w, status, toWorkflowResponse(wf.View()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toWorkflowResponse(view workflow.View) api.WorkflowResponse {
	resp := api.WorkflowResponse{
		Id:         view.ID,
		ShowtimeId: view.ShowtimeID,
		State:      string(view.State),
		Seats:      make([]api.SelectedSeat, 0, len(view.Seats)),
		Pricing: api.Pricing{
			BasePrice:      view.Pricing.BasePrice.Round(2),
			ConvenienceFee: view.Pricing.ConvenienceFee.Round(2),
			Gst:            view.Pricing.Tax.Round(2),
			Total:          view.Pricing.Total.Round(2),
		},
		Booking:         toBookingResponse(view.Booking),
		Processing:      view.Processing,
		PaymentCaptured: view.Charged,
	}

	for _, seat := range view.Seats {
		resp.Seats = append(resp.Seats, api.SelectedSeat{
			Id:    seat.ID,
			Label: seat.Label(),
			Type:  seat.Type,
			Price: seat.Price,
		})
	}

	return resp
}

func toBookingResponse(booking *domain.BookingRecord) *api.Booking {
	if booking == nil {
		return nil
	}

	return &api.Booking{
		BookingId:     booking.BookingID,
		ShowtimeId:    booking.ShowtimeID,
		ShowTime:      booking.ShowTime,
		TheaterName:   booking.TheaterName,
		SeatIds:       booking.SeatIDs,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		PaymentStatus: string(booking.PaymentStatus),
	}
}
