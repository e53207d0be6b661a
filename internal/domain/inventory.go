package domain

import (
	"cmp"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

type SeatRenderState string

const (
	RenderAvailable   SeatRenderState = "available"
	RenderSelected    SeatRenderState = "selected"
	RenderBooked      SeatRenderState = "booked"
	RenderBlocked     SeatRenderState = "blocked"
	RenderMaintenance SeatRenderState = "maintenance"
)

var SeatLegend = map[SeatRenderState]string{
	RenderAvailable:   "Available",
	RenderSelected:    "Selected",
	RenderBooked:      "Booked",
	RenderBlocked:     "Temporarily Blocked",
	RenderMaintenance: "Under Maintenance",
}

type SeatView struct {
	ID         string
	Label      string
	Number     int
	Type       string
	Price      decimal.Decimal
	State      SeatRenderState
	Selectable bool
}

type SeatRowView struct {
	Row   string
	Seats []SeatView
}

// InventoryView maps the seat snapshot of a showtime to what each seat should
// look like. Rows come out in label order and seats by number. selection may
// be nil.
func InventoryView(details *ShowtimeDetails, selection *SelectionSet) []SeatRowView {
	rowLabels := make([]string, 0, len(details.Rows))
	for label := range details.Rows {
		rowLabels = append(rowLabels, label)
	}
	sort.Strings(rowLabels)

	rows := make([]SeatRowView, 0, len(rowLabels))

	for _, label := range rowLabels {
		seats := slices.Clone(details.Rows[label])
		slices.SortStableFunc(seats, func(a, b Seat) int {
			return cmp.Or(cmp.Compare(a.Number, b.Number), cmp.Compare(a.ID, b.ID))
		})

		row := SeatRowView{Row: label, Seats: make([]SeatView, len(seats))}

		for i, seat := range seats {
			selected := selection != nil && selection.Contains(seat.ID)
			state := renderState(seat, selected)

			row.Seats[i] = SeatView{
				ID:         seat.ID,
				Label:      seat.Label(),
				Number:     seat.Number,
				Type:       seat.Type,
				Price:      seat.Price,
				State:      state,
				Selectable: state == RenderAvailable || state == RenderSelected,
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func renderState(seat Seat, selected bool) SeatRenderState {
	if selected {
		return RenderSelected
	}

	switch seat.Status {
	case SeatAvailable:
		return RenderAvailable
	case SeatBooked:
		return RenderBooked
	case SeatMaintenance:
		return RenderMaintenance
	default:
		// blocked, and anything the backend sends that we don't know about
		return RenderBlocked
	}
}
