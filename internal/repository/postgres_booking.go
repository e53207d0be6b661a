package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// BookingHoldTTL is how long an unpaid booking keeps its seats.
const BookingHoldTTL = 15 * time.Minute

const bookedSeatUniqueConstraint = "booked_seats_showtime_id_seat_id_key"

type PostgresBookingRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db:  db,
		now: time.Now,
	}
}

// CreateBooking holds the seats for the customer in one transaction. Seat
// exclusivity is guaranteed by the unique (showtime_id, seat_id) constraint on
// booked_seats, so two racing bookings can never both succeed.
func (p *PostgresBookingRepository) CreateBooking(
	ctx context.Context,
	req domain.BookingRequest) (*domain.BookingRecord, error) {

	if req.Customer.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	if len(req.SeatIDs) == 0 {
		return nil, domain.ErrEmptySelection
	}

	now := p.now().UTC()

	record := &domain.BookingRecord{
		BookingID:     generateBookingID(now),
		ShowtimeID:    req.ShowtimeID,
		SeatIDs:       req.SeatIDs,
		CustomerID:    req.Customer.UserID,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		PaymentStatus: domain.PaymentStatusPending,
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT sh.show_time, t.name
			FROM showtimes sh
			JOIN theaters t
				ON sh.theater_id = t.id
			WHERE sh.id = $1
		`

		err := tx.QueryRow(ctx, query, req.ShowtimeID).Scan(&record.ShowTime, &record.TheaterName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		if !record.ShowTime.After(now) {
			return domain.ErrShowtimeUnavailable
		}

		// release holds of unpaid bookings that ran out of time
		query = `
			DELETE FROM bookings
			WHERE showtime_id = $1 AND payment_status = 'pending' AND expires_at <= $2
		`

		_, err = tx.Exec(ctx, query, req.ShowtimeID, now)
		if err != nil {
			return err
		}

		query = `
			SELECT se.seat_id, se.status, bs.booking_id IS NOT NULL
			FROM seats se
			LEFT JOIN booked_seats bs
				ON bs.showtime_id = se.showtime_id AND bs.seat_id = se.seat_id
			WHERE se.showtime_id = $1 AND se.seat_id = ANY($2)
		`

		rows, err := tx.Query(ctx, query, req.ShowtimeID, req.SeatIDs)
		if err != nil {
			return err
		}

		found := make(map[string]bool, len(req.SeatIDs))
		conflict := &domain.SeatConflictError{}

		for rows.Next() {
			var (
				seatID string
				status domain.SeatStatus
				held   bool
			)

			if err := rows.Scan(&seatID, &status, &held); err != nil {
				rows.Close()
				return err
			}

			found[seatID] = true
			if held || status != domain.SeatAvailable {
				conflict.SeatIDs = append(conflict.SeatIDs, seatID)
			}
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range req.SeatIDs {
			if !found[id] {
				return fmt.Errorf("%w: %s", domain.ErrSeatNotFound, id)
			}
		}

		if len(conflict.SeatIDs) > 0 {
			return conflict
		}

		query = `
			INSERT INTO bookings (
				booking_id, showtime_id, google_user_id, user_name, user_email, user_picture,
				booked_at, expires_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $7)
		`

		_, err = tx.Exec(
			ctx,
			query,
			record.BookingID,
			req.ShowtimeID,
			req.Customer.UserID,
			req.Customer.Name,
			req.Customer.Email,
			req.Customer.Picture,
			now,
			now.Add(BookingHoldTTL))
		if err != nil {
			return err
		}

		rowsToCopy := make([][]any, 0, len(req.SeatIDs))
		for _, id := range req.SeatIDs {
			rowsToCopy = append(rowsToCopy, []any{record.BookingID, req.ShowtimeID, id})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booked_seats"},
			[]string{"booking_id", "showtime_id", "seat_id"},
			pgx.CopyFromRows(rowsToCopy),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) &&
			pgErr.Code == pgerrcode.UniqueViolation &&
			pgErr.ConstraintName == bookedSeatUniqueConstraint {
			// lost a race with a concurrent booking; the other side does not
			// tell us which seat it took
			return nil, &domain.SeatConflictError{}
		}
		return nil, err
	}

	return record, nil
}

// ConfirmPayment marks an unpaid, unexpired booking as paid.
func (p *PostgresBookingRepository) ConfirmPayment(
	ctx context.Context,
	bookingID string,
	confirmation domain.PaymentConfirmation) error {

	query := `
		UPDATE bookings
		SET payment_status = 'completed',
			transaction_id = $2,
			payment_method = $3,
			paid_amount = $4,
			updated_at = $5
		WHERE booking_id = $1
			AND payment_status = 'pending'
			AND expires_at > $5
			AND ($6 = '' OR google_user_id = $6)
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		bookingID,
		confirmation.TransactionID,
		string(confirmation.Method),
		confirmation.PaidAmount,
		p.now().UTC(),
		confirmation.CustomerID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotUnpaid
	}

	return nil
}

// GetBooking returns a booking with its seats. An empty customerID matches
// any owner.
func (p *PostgresBookingRepository) GetBooking(
	ctx context.Context,
	bookingID string,
	customerID string) (*domain.BookingRecord, error) {

	query := `
		SELECT b.booking_id, b.showtime_id, sh.show_time, t.name,
			b.google_user_id, b.user_name, b.user_email, b.payment_status,
			ARRAY(SELECT bs.seat_id FROM booked_seats bs WHERE bs.booking_id = b.booking_id ORDER BY bs.seat_id)
		FROM bookings b
		JOIN showtimes sh
			ON sh.id = b.showtime_id
		JOIN theaters t
			ON t.id = sh.theater_id
		WHERE b.booking_id = $1 AND ($2 = '' OR b.google_user_id = $2)
	`

	var record domain.BookingRecord

	err := p.db.QueryRow(ctx, query, bookingID, customerID).Scan(
		&record.BookingID,
		&record.ShowtimeID,
		&record.ShowTime,
		&record.TheaterName,
		&record.CustomerID,
		&record.CustomerName,
		&record.CustomerEmail,
		&record.PaymentStatus,
		&record.SeatIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &record, nil
}

// CancelBooking deletes an unpaid booking of the customer, which frees its
// seats. A paid booking is never cancelled here.
func (p *PostgresBookingRepository) CancelBooking(ctx context.Context, bookingID string, customerID string) error {
	query := `
		DELETE FROM bookings
		WHERE booking_id = $1
			AND payment_status = 'pending'
			AND ($2 = '' OR google_user_id = $2)
	`

	tag, err := p.db.Exec(ctx, query, bookingID, customerID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotUnpaid
	}

	return nil
}

// generateBookingID returns an id of the form CF{YYYYMMDD}{6 digits}.
func generateBookingID(now time.Time) string {
	return fmt.Sprintf("CF%s%06d", now.Format("20060102"), 100000+rand.IntN(900000))
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
