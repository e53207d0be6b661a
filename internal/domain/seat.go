package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable   SeatStatus = "available"
	SeatBooked      SeatStatus = "booked"
	SeatBlocked     SeatStatus = "blocked"
	SeatMaintenance SeatStatus = "maintenance"
)

// Seat is a snapshot of one seat of a showtime as it was fetched. Its status
// only changes through a fresh fetch or a server-side booking outcome.
type Seat struct {
	ID     string
	Row    string
	Number int
	Type   string
	Price  decimal.Decimal
	Status SeatStatus
}

func (s Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

// Label returns the display label of the seat, e.g. "C7".
func (s Seat) Label() string {
	if s.Row == "" || s.Number == 0 {
		return s.ID
	}

	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

type ShowtimeDetails struct {
	ShowtimeID string
	MovieID    int
	Theater    Theater
	ShowTime   time.Time
	Rows       map[string][]Seat
}

// Seat looks a seat up by its identifier.
func (d *ShowtimeDetails) Seat(seatID string) (Seat, bool) {
	for _, seats := range d.Rows {
		for _, seat := range seats {
			if seat.ID == seatID {
				return seat, true
			}
		}
	}

	return Seat{}, false
}

// MarkBooked overrides the cached status of the given seats. It is used when
// the booking service reports that seats were taken by someone else.
func (d *ShowtimeDetails) MarkBooked(seatIDs ...string) {
	d.setStatus(seatIDs, func(Seat) bool { return true }, SeatBooked)
}

// ReleaseHeld shows the given seats as available where the catalog reports
// them blocked. Seats blocked by the customer's own unpaid booking are still
// theirs to pick.
func (d *ShowtimeDetails) ReleaseHeld(seatIDs ...string) {
	d.setStatus(seatIDs, func(s Seat) bool { return s.Status == SeatBlocked }, SeatAvailable)
}

func (d *ShowtimeDetails) setStatus(seatIDs []string, match func(Seat) bool, status SeatStatus) {
	if len(seatIDs) == 0 {
		return
	}

	ids := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		ids[id] = true
	}

	for row, seats := range d.Rows {
		for i := range seats {
			if ids[seats[i].ID] && match(seats[i]) {
				d.Rows[row][i].Status = status
			}
		}
	}
}

func (d *ShowtimeDetails) SeatCount() int {
	count := 0
	for _, seats := range d.Rows {
		count += len(seats)
	}

	return count
}

type CatalogService interface {
	GetShowtimeDetails(ctx context.Context, showtimeID string) (*ShowtimeDetails, error)
}
