package domain

const MaxSelectedSeats = 10

type ToggleResult int

const (
	// ToggleIgnored means the seat was not available and nothing changed.
	ToggleIgnored ToggleResult = iota
	ToggleAdded
	ToggleRemoved
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleAdded:
		return "added"
	case ToggleRemoved:
		return "removed"
	default:
		return "ignored"
	}
}

// SelectionSet holds the seats chosen for a single showtime in the order they
// were picked. Members were available when picked, never repeat and never
// exceed MaxSelectedSeats.
type SelectionSet struct {
	showtimeID string
	seats      []Seat
}

func NewSelectionSet(showtimeID string) *SelectionSet {
	return &SelectionSet{showtimeID: showtimeID}
}

func (s *SelectionSet) ShowtimeID() string {
	return s.showtimeID
}

// Bind attaches the set to a showtime, dropping every seat when the showtime
// differs from the current one.
func (s *SelectionSet) Bind(showtimeID string) {
	if s.showtimeID == showtimeID {
		return
	}

	s.showtimeID = showtimeID
	s.Clear()
}

// Toggle removes the seat when it is selected and adds it otherwise. Seats that
// are not available are ignored. Adding to a full set fails with
// ErrCapacityExceeded and leaves the set unchanged.
func (s *SelectionSet) Toggle(seat Seat) (ToggleResult, error) {
	if !seat.IsAvailable() {
		return ToggleIgnored, nil
	}

	if i := s.indexOf(seat.ID); i >= 0 {
		s.seats = append(s.seats[:i], s.seats[i+1:]...)
		return ToggleRemoved, nil
	}

	if len(s.seats) >= MaxSelectedSeats {
		return ToggleIgnored, ErrCapacityExceeded
	}

	s.seats = append(s.seats, seat)

	return ToggleAdded, nil
}

// Remove drops the given seats and returns the identifiers that were members.
func (s *SelectionSet) Remove(seatIDs ...string) []string {
	var removed []string

	for _, id := range seatIDs {
		if i := s.indexOf(id); i >= 0 {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			removed = append(removed, id)
		}
	}

	return removed
}

func (s *SelectionSet) Clear() {
	s.seats = nil
}

func (s *SelectionSet) Contains(seatID string) bool {
	return s.indexOf(seatID) >= 0
}

func (s *SelectionSet) Len() int {
	return len(s.seats)
}

func (s *SelectionSet) IsEmpty() bool {
	return len(s.seats) == 0
}

// Seats returns a copy of the selected seats in selection order.
func (s *SelectionSet) Seats() []Seat {
	seats := make([]Seat, len(s.seats))
	copy(seats, s.seats)

	return seats
}

func (s *SelectionSet) SeatIDs() []string {
	ids := make([]string, len(s.seats))
	for i, seat := range s.seats {
		ids[i] = seat.ID
	}

	return ids
}

func (s *SelectionSet) Pricing() PricingBreakdown {
	return ComputePricing(s.seats)
}

func (s *SelectionSet) indexOf(seatID string) int {
	for i, seat := range s.seats {
		if seat.ID == seatID {
			return i
		}
	}

	return -1
}
