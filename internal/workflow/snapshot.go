package workflow

import (
	"errors"
	"fmt"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// Snapshot is the persisted form of a workflow between requests.
type Snapshot struct {
	ID       string                  `json:"id"`
	State    State                   `json:"state"`
	Showtime *domain.ShowtimeDetails `json:"showtime"`
	SeatIDs  []string                `json:"seatIds"`
	Pending  *Progress               `json:"pending,omitempty"`
	Booking  *domain.BookingRecord   `json:"booking,omitempty"`
	Receipt  *domain.PaymentReceipt  `json:"receipt,omitempty"`
}

var ErrCorruptSnapshot = errors.New("corrupt workflow snapshot")

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		ID:       w.id,
		State:    w.state,
		Showtime: w.details,
		SeatIDs:  w.selection.SeatIDs(),
		Pending:  w.pending,
		Booking:  w.booking,
		Receipt:  w.receipt,
	}
}

// Restore rebuilds a workflow from its snapshot with the session of the
// current request. Seats that are no longer available in the stored seat map
// are not restored into the selection.
func Restore(snap Snapshot, gate *Gate, submitter *Submitter) (*Workflow, error) {
	if snap.Showtime == nil || snap.ID == "" {
		return nil, ErrCorruptSnapshot
	}

	w := &Workflow{
		id:        snap.ID,
		details:   snap.Showtime,
		selection: domain.NewSelectionSet(snap.Showtime.ShowtimeID),
		state:     snap.State,
		pending:   snap.Pending,
		booking:   snap.Booking,
		receipt:   snap.Receipt,
		gate:      gate,
		submitter: submitter,
	}

	for _, id := range snap.SeatIDs {
		seat, ok := snap.Showtime.Seat(id)
		if !ok {
			continue
		}

		if _, err := w.selection.Toggle(seat); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
	}

	switch snap.State {
	case StateSelectingSeats:
	case StatePaying:
		if w.selection.IsEmpty() {
			w.state = StateSelectingSeats
		}
	case StateConfirmed:
		if snap.Booking == nil {
			return nil, fmt.Errorf("%w: confirmed without a booking", ErrCorruptSnapshot)
		}
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrCorruptSnapshot, snap.State)
	}

	return w, nil
}
