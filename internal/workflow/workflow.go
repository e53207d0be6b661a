package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

type State string

const (
	StateSelectingSeats State = "selecting_seats"
	StatePaying         State = "paying"
	StateConfirmed      State = "confirmed"
)

// Workflow drives one booking attempt for one showtime: seats are picked,
// paid for and confirmed. It exclusively owns its selection. All methods are
// safe for concurrent use, and a submission never runs twice at once.
type Workflow struct {
	mu sync.Mutex

	id        string
	details   *domain.ShowtimeDetails
	selection *domain.SelectionSet
	state     State
	pending   *Progress
	booking   *domain.BookingRecord
	receipt   *domain.PaymentReceipt

	processing bool
	closed     bool

	gate      *Gate
	submitter *Submitter
}

// View is a point-in-time copy of the workflow for presentation.
type View struct {
	ID         string
	ShowtimeID string
	State      State
	Seats      []domain.Seat
	Pricing    domain.PricingBreakdown
	Booking    *domain.BookingRecord
	Processing bool
	Charged    bool
}

type PaymentDetails struct {
	Method domain.PaymentMethod
}

func New(details *domain.ShowtimeDetails, gate *Gate, submitter *Submitter) *Workflow {
	return &Workflow{
		id:        uuid.NewString(),
		details:   details,
		selection: domain.NewSelectionSet(details.ShowtimeID),
		state:     StateSelectingSeats,
		gate:      gate,
		submitter: submitter,
	}
}

// Start fetches the seats of the showtime once and opens a workflow on them.
func Start(
	ctx context.Context,
	catalog domain.CatalogService,
	showtimeID string,
	gate *Gate,
	submitter *Submitter,
) (*Workflow, error) {
	details, err := catalog.GetShowtimeDetails(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}

		return nil, classify(err)
	}

	return New(details, gate, submitter), nil
}

func (w *Workflow) ID() string {
	return w.id
}

func (w *Workflow) ShowtimeID() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.details.ShowtimeID
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// Booking returns the record issued by the booking service once confirmed.
func (w *Workflow) Booking() (*domain.BookingRecord, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.booking, w.booking != nil
}

// Receipt returns the charge that paid for the confirmed booking.
func (w *Workflow) Receipt() (*domain.PaymentReceipt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.receipt, w.receipt != nil
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	return View{
		ID:         w.id,
		ShowtimeID: w.details.ShowtimeID,
		State:      w.state,
		Seats:      w.selection.Seats(),
		Pricing:    w.selection.Pricing(),
		Booking:    w.booking,
		Processing: w.processing,
		Charged:    w.pending.Charged(),
	}
}

// Inventory renders the cached seat snapshot with the current selection.
func (w *Workflow) Inventory() []domain.SeatRowView {
	w.mu.Lock()
	defer w.mu.Unlock()

	return domain.InventoryView(w.details, w.selection)
}

// Refresh replaces the seat snapshot with a fresh fetch of the same showtime.
// Selected seats that are no longer available are dropped and returned. Seats
// held by the workflow's own unpaid booking stay available to it.
func (w *Workflow) Refresh(details *domain.ShowtimeDetails) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	if details.ShowtimeID != w.details.ShowtimeID {
		return nil, fmt.Errorf("refresh with showtime %q on a workflow for %q", details.ShowtimeID, w.details.ShowtimeID)
	}

	if w.state != StateSelectingSeats {
		return nil, nil
	}

	if w.pending.Held() {
		details.ReleaseHeld(w.pending.Booking.SeatIDs...)
	}

	var stale []string
	for _, seat := range w.selection.Seats() {
		if fresh, ok := details.Seat(seat.ID); !ok || !fresh.IsAvailable() {
			stale = append(stale, seat.ID)
		}
	}

	w.details = details
	w.selection.Remove(stale...)

	return stale, nil
}

func (w *Workflow) Toggle(seatID string) (domain.ToggleResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkSelectable(); err != nil {
		return domain.ToggleIgnored, err
	}

	seat, ok := w.details.Seat(seatID)
	if !ok {
		return domain.ToggleIgnored, domain.ErrSeatNotFound
	}

	return w.selection.Toggle(seat)
}

func (w *Workflow) ClearSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkSelectable(); err != nil {
		return err
	}

	w.selection.Clear()

	return nil
}

// Advance moves from seat selection to payment. Without a session it returns
// an AuthRequiredError and the state is left alone.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOpen(); err != nil {
		return err
	}

	if w.state != StateSelectingSeats {
		return domain.ErrInvalidTransition
	}

	if w.selection.IsEmpty() {
		return domain.ErrEmptySelection
	}

	if _, err := w.gate.RequireSession(); err != nil {
		return err
	}

	w.state = StatePaying

	return nil
}

// MarkSubmitting records that a submission for this workflow is running in
// another request. Until the workflow is reloaded it cannot go back.
func (w *Workflow) MarkSubmitting() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.processing = true
}

// Back returns from payment to seat selection unless money was already taken.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOpen(); err != nil {
		return err
	}

	if w.state != StatePaying {
		return domain.ErrInvalidTransition
	}

	if w.processing {
		return domain.ErrSubmissionInProgress
	}

	if w.pending.Charged() {
		return domain.ErrPaymentCaptured
	}

	w.state = StateSelectingSeats

	return nil
}

// SubmitPayment books and pays for the selected seats. The workflow lock is
// not held during the network calls; a submission that finishes after Close
// is discarded. On a seat conflict the workflow returns to seat selection with
// the disputed seats marked booked and dropped from the selection. A charge
// that had to be refunded also returns it to seat selection.
func (w *Workflow) SubmitPayment(ctx context.Context, payment PaymentDetails) (*domain.BookingRecord, error) {
	w.mu.Lock()

	if err := w.checkOpen(); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	if w.state != StatePaying {
		w.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}

	if w.processing {
		w.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}

	session, ok := w.gate.CurrentSession()
	if !ok {
		w.mu.Unlock()
		return nil, domain.ErrUnauthorized
	}

	req := SubmitRequest{
		ShowtimeID: w.details.ShowtimeID,
		Seats:      w.selection.Seats(),
		Session:    &session,
		Method:     payment.Method,
		Pending:    w.pending,
	}

	w.processing = true
	w.mu.Unlock()

	progress, err := w.submitter.Submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.processing = false

	if w.closed {
		return nil, domain.ErrWorkflowClosed
	}

	w.pending = progress

	if err != nil {
		var conflict *domain.SeatConflictError
		switch {
		case errors.As(err, &conflict):
			w.resolveConflict(conflict.SeatIDs)
		case errors.Is(err, domain.ErrPaymentRefunded):
			w.pending = nil
			w.state = StateSelectingSeats
		}

		return nil, err
	}

	w.booking = progress.Booking
	w.receipt = progress.Receipt
	w.pending = nil
	w.state = StateConfirmed

	return w.booking, nil
}

// Close tears the workflow down. It is safe to call more than once.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
}

// Discard closes the workflow and gives back what an unfinished submission
// holds, see Submitter.Abandon. The workflow is closed even when that fails.
func (w *Workflow) Discard(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	pending := w.pending
	w.mu.Unlock()

	if pending == nil || w.submitter == nil {
		return nil
	}

	return w.submitter.Abandon(ctx, pending)
}

func (w *Workflow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closed
}

// resolveConflict trusts the booking service over the cached snapshot.
func (w *Workflow) resolveConflict(seatIDs []string) {
	disputed := seatIDs
	if len(disputed) == 0 {
		disputed = w.selection.SeatIDs()
	}

	w.details.MarkBooked(disputed...)
	w.selection.Remove(disputed...)
	w.pending = nil
	w.state = StateSelectingSeats
}

func (w *Workflow) checkOpen() error {
	if w.closed {
		return domain.ErrWorkflowClosed
	}

	return nil
}

func (w *Workflow) checkSelectable() error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	if w.state != StateSelectingSeats {
		return domain.ErrSelectionLocked
	}

	return nil
}
