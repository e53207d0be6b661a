package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// GetSeatMap fetches the seats of a showtime and applies the session's
// selection when its workflow is for the same showtime. Selected seats that
// were taken since they were picked are dropped and reported.
func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showtimeID string) {
	logger := app.contextGetLogger(r)

	if err := app.validator.Var(showtimeID, "showtime_id"); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid showtime ID"))
		return
	}

	details, err := app.catalog.GetShowtimeDetails(r.Context(), showtimeID)
	if err != nil {
		app.workflowErrorResponse(w, r, err, seatMapPath(showtimeID))
		return
	}

	if details.SeatCount() == 0 {
		logger.Warn("seat map not found for showtime", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	rows := domain.InventoryView(details, nil)
	selected := 0
	var dropped []string

	wf, err := app.loadWorkflow(r)
	switch {
	case errors.Is(err, ErrWorkflowNotFound):
	case err != nil:
		app.serverErrorResponse(w, r, err)
		return
	case wf.ShowtimeID() == showtimeID:
		dropped, err = wf.Refresh(details)
		if err != nil {
			app.workflowErrorResponse(w, r, err, seatMapPath(showtimeID))
			return
		}

		if len(dropped) > 0 {
			logger.Info("dropped seats taken since selection", "showtime_id", showtimeID, "seats", dropped)
		}

		if err := app.saveWorkflow(r, wf); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		rows = wf.Inventory()
		selected = len(wf.View().Seats)
	}

	resp := toSeatMapResponse(details, rows, selected, dropped)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(
	details *domain.ShowtimeDetails,
	rows []domain.SeatRowView,
	selected int,
	dropped []string) api.SeatMapResponse {

	resp := api.SeatMapResponse{
		ShowtimeId: details.ShowtimeID,
		MovieId:    details.MovieID,
		ShowTime:   details.ShowTime,
		Theater: api.Theater{
			Id:      details.Theater.ID,
			Name:    details.Theater.Name,
			Address: details.Theater.Address,
		},
		Rows:          make([]api.SeatRow, 0, len(rows)),
		Legend:        make(map[string]string, len(domain.SeatLegend)),
		SelectedCount: selected,
		MaxSeats:      domain.MaxSelectedSeats,
		DroppedSeats:  dropped,
	}

	for state, label := range domain.SeatLegend {
		resp.Legend[string(state)] = label
	}

	for _, row := range rows {
		seatRow := api.SeatRow{
			RowId: row.Row,
			Seats: make([]api.SeatView, 0, len(row.Seats)),
		}

		for _, seat := range row.Seats {
			seatRow.Seats = append(seatRow.Seats, api.SeatView{
				Id:         seat.ID,
				Label:      seat.Label,
				Number:     seat.Number,
				Type:       seat.Type,
				Price:      seat.Price,
				State:      string(seat.State),
				Selectable: seat.Selectable,
			})
		}

		resp.Rows = append(resp.Rows, seatRow)
	}

	return resp
}
