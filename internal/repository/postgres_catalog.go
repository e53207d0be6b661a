package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

// GetShowtimeDetails returns the seat map of a showtime. Seats held by a paid
// booking come back booked and seats held by an unexpired unpaid booking come
// back blocked.
func (p *PostgresCatalogRepository) GetShowtimeDetails(
	ctx context.Context,
	showtimeID string) (*domain.ShowtimeDetails, error) {

	query := `
		SELECT sh.id, sh.movie_id, sh.show_time, t.id, t.name, t.address
		FROM showtimes sh
		JOIN theaters t
			ON sh.theater_id = t.id
		WHERE sh.id = $1
	`

	var details domain.ShowtimeDetails

	err := p.db.QueryRow(ctx, query, showtimeID).Scan(
		&details.ShowtimeID,
		&details.MovieID,
		&details.ShowTime,
		&details.Theater.ID,
		&details.Theater.Name,
		&details.Theater.Address,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	query = `
		SELECT
			se.seat_id,
			se.row_id,
			se.seat_number,
			se.seat_type,
			se.price,
			CASE
				WHEN b.payment_status = 'completed' THEN 'booked'
				WHEN b.payment_status = 'pending' AND b.expires_at > $2 THEN 'blocked'
				ELSE se.status
			END AS status
		FROM seats se
		LEFT JOIN booked_seats bs
			ON bs.showtime_id = se.showtime_id AND bs.seat_id = se.seat_id
		LEFT JOIN bookings b
			ON b.booking_id = bs.booking_id
		WHERE se.showtime_id = $1
		ORDER BY se.row_id, se.seat_number
	`

	rows, err := p.db.Query(ctx, query, showtimeID, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details.Rows = make(map[string][]domain.Seat)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.ID,
			&seat.Row,
			&seat.Number,
			&seat.Type,
			&seat.Price,
			&seat.Status,
		)
		if err != nil {
			return nil, err
		}

		details.Rows[seat.Row] = append(details.Rows[seat.Row], seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &details, nil
}
