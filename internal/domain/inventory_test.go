package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestInventoryView(t *testing.T) {
	details := &ShowtimeDetails{
		ShowtimeID: "showtime-1",
		Rows: map[string][]Seat{
			"B": {
				{ID: "B2", Row: "B", Number: 2, Type: "regular", Price: decimal.NewFromInt(10), Status: SeatMaintenance},
				{ID: "B1", Row: "B", Number: 1, Type: "regular", Price: decimal.NewFromInt(10), Status: "reserved-by-admin"},
			},
			"A": {
				{ID: "A3", Row: "A", Number: 3, Type: "premium", Price: decimal.NewFromInt(15), Status: SeatBlocked},
				{ID: "A1", Row: "A", Number: 1, Type: "premium", Price: decimal.NewFromInt(15), Status: SeatAvailable},
				{ID: "A2", Row: "A", Number: 2, Type: "premium", Price: decimal.NewFromInt(15), Status: SeatBooked},
			},
		},
	}

	selection := NewSelectionSet("showtime-1")
	selection.Toggle(details.Rows["A"][1])

	got := InventoryView(details, selection)

	want := []SeatRowView{
		{
			Row: "A",
			Seats: []SeatView{
				{ID: "A1", Label: "A1", Number: 1, Type: "premium", Price: decimal.NewFromInt(15), State: RenderSelected, Selectable: true},
				{ID: "A2", Label: "A2", Number: 2, Type: "premium", Price: decimal.NewFromInt(15), State: RenderBooked},
				{ID: "A3", Label: "A3", Number: 3, Type: "premium", Price: decimal.NewFromInt(15), State: RenderBlocked},
			},
		},
		{
			Row: "B",
			Seats: []SeatView{
				{ID: "B1", Label: "B1", Number: 1, Type: "regular", Price: decimal.NewFromInt(10), State: RenderBlocked},
				{ID: "B2", Label: "B2", Number: 2, Type: "regular", Price: decimal.NewFromInt(10), State: RenderMaintenance},
			},
		},
	}

	if diff := cmp.Diff(want, got, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("InventoryView mismatch (-want +got):\n%s", diff)
	}

	if details.Rows["A"][0].ID != "A3" {
		t.Errorf("InventoryView must not reorder the snapshot")
	}
}

func TestInventoryViewWithoutSelection(t *testing.T) {
	details := &ShowtimeDetails{
		Rows: map[string][]Seat{
			"A": {{ID: "A1", Row: "A", Number: 1, Status: SeatAvailable}},
		},
	}

	got := InventoryView(details, nil)

	if got[0].Seats[0].State != RenderAvailable || !got[0].Seats[0].Selectable {
		t.Errorf("expected an available, selectable seat, got %+v", got[0].Seats[0])
	}
}

func TestShowtimeDetailsMarkBooked(t *testing.T) {
	details := &ShowtimeDetails{
		Rows: map[string][]Seat{
			"A": {{ID: "A1", Status: SeatAvailable}, {ID: "A2", Status: SeatAvailable}},
		},
	}

	details.MarkBooked("A2")

	seat, ok := details.Seat("A2")
	if !ok || seat.Status != SeatBooked {
		t.Errorf("expected A2 to be booked, got %+v", seat)
	}

	seat, _ = details.Seat("A1")
	if seat.Status != SeatAvailable {
		t.Errorf("expected A1 to stay available, got %+v", seat)
	}
}

func TestShowtimeDetailsReleaseHeld(t *testing.T) {
	details := &ShowtimeDetails{
		Rows: map[string][]Seat{
			"A": {
				{ID: "A1", Status: SeatBlocked},
				{ID: "A2", Status: SeatBooked},
				{ID: "A3", Status: SeatBlocked},
			},
		},
	}

	details.ReleaseHeld("A1", "A2")

	want := map[string]SeatStatus{
		"A1": SeatAvailable,
		"A2": SeatBooked,
		"A3": SeatBlocked,
	}

	for id, status := range want {
		seat, _ := details.Seat(id)
		if seat.Status != status {
			t.Errorf("seat %s: expected %s, got %s", id, status, seat.Status)
		}
	}
}
