package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

var unavailableSeatPattern = regexp.MustCompile(`seat (\S+) is not available`)

// Client talks to the REST backend that owns showtimes and bookings. It
// implements both domain.CatalogService and domain.BookingService.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type showtimeResponse struct {
	Showtime struct {
		ID       string    `json:"id"`
		MovieID  int       `json:"movie_id"`
		ShowTime time.Time `json:"show_time"`
	} `json:"showtime"`
	Theater struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"theater"`
	SeatLayout struct {
		Rows map[string][]seatPayload `json:"rows"`
	} `json:"seat_layout"`
}

type seatPayload struct {
	SeatID     string          `json:"seat_id"`
	RowID      string          `json:"row_id"`
	SeatNumber int             `json:"seat_number"`
	SeatType   string          `json:"seat_type"`
	Status     string          `json:"status"`
	Price      decimal.Decimal `json:"price"`
}

type createBookingRequest struct {
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
	GoogleID   string   `json:"googleId"`
}

type bookingPayload struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	GoogleUserID  string    `json:"google_user_id"`
	ShowtimeID    string    `json:"showtime_id"`
	ShowTime      time.Time `json:"show_time"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	PaymentStatus string    `json:"payment_status"`
	Seats         []struct {
		SeatID string `json:"seat_id"`
	} `json:"seats"`
}

// bookingResponse is returned both when a booking is created and when it is
// looked up.
type bookingResponse struct {
	Booking bookingPayload `json:"booking"`
	Theater *struct {
		Name string `json:"name"`
	} `json:"theater"`
}

// customerRequest carries the user for endpoints that only need to know who
// is asking.
type customerRequest struct {
	GoogleID string `json:"googleId"`
}

type confirmPaymentRequest struct {
	GoogleID      string  `json:"googleId"`
	TransactionID string  `json:"transaction_id"`
	PaymentMethod string  `json:"payment_method"`
	PaidAmount    float64 `json:"paid_amount"`
}

func (c *Client) GetShowtimeDetails(ctx context.Context, showtimeID string) (*domain.ShowtimeDetails, error) {
	var resp showtimeResponse

	err := c.do(ctx, http.MethodGet, "/api/showtimes/"+url.PathEscape(showtimeID), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch showtime %s: %w", showtimeID, err)
	}

	details := &domain.ShowtimeDetails{
		ShowtimeID: resp.Showtime.ID,
		MovieID:    resp.Showtime.MovieID,
		ShowTime:   resp.Showtime.ShowTime,
		Theater: domain.Theater{
			ID:      resp.Theater.ID,
			Name:    resp.Theater.Name,
			Address: resp.Theater.Address,
		},
		Rows: make(map[string][]domain.Seat, len(resp.SeatLayout.Rows)),
	}

	if details.ShowtimeID == "" {
		details.ShowtimeID = showtimeID
	}

	for row, seats := range resp.SeatLayout.Rows {
		for _, s := range seats {
			rowID := s.RowID
			if rowID == "" {
				rowID = row
			}

			details.Rows[row] = append(details.Rows[row], domain.Seat{
				ID:     s.SeatID,
				Row:    rowID,
				Number: s.SeatNumber,
				Type:   s.SeatType,
				Price:  s.Price,
				Status: domain.SeatStatus(s.Status),
			})
		}
	}

	return details, nil
}

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingRecord, error) {
	body := createBookingRequest{
		ShowtimeID: req.ShowtimeID,
		SeatIDs:    req.SeatIDs,
		GoogleID:   req.Customer.UserID,
	}

	var resp bookingResponse

	err := c.do(ctx, http.MethodPost, "/api/bookings", body, &resp)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	record := resp.record()
	if record.CustomerID == "" {
		record.CustomerID = req.Customer.UserID
	}

	return record, nil
}

// GetBooking looks a booking up by the service's record id.
func (c *Client) GetBooking(ctx context.Context, bookingID string, customerID string) (*domain.BookingRecord, error) {
	var resp bookingResponse

	err := c.do(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(bookingID), customerRequest{GoogleID: customerID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch booking %s: %w", bookingID, err)
	}

	return resp.record(), nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string, customerID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/bookings/"+url.PathEscape(bookingID), customerRequest{GoogleID: customerID}, nil)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrBookingNotUnpaid
		}

		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	return nil
}

func (r *bookingResponse) record() *domain.BookingRecord {
	record := &domain.BookingRecord{
		ID:            r.Booking.ID,
		BookingID:     r.Booking.BookingID,
		ShowtimeID:    r.Booking.ShowtimeID,
		ShowTime:      r.Booking.ShowTime,
		CustomerID:    r.Booking.GoogleUserID,
		CustomerName:  r.Booking.UserName,
		CustomerEmail: r.Booking.UserEmail,
		PaymentStatus: domain.PaymentStatus(r.Booking.PaymentStatus),
		SeatIDs:       make([]string, len(r.Booking.Seats)),
	}

	for i, seat := range r.Booking.Seats {
		record.SeatIDs[i] = seat.SeatID
	}

	if r.Theater != nil {
		record.TheaterName = r.Theater.Name
	}

	return record
}

func (c *Client) ConfirmPayment(ctx context.Context, bookingID string, confirmation domain.PaymentConfirmation) error {
	body := confirmPaymentRequest{
		GoogleID:      confirmation.CustomerID,
		TransactionID: confirmation.TransactionID,
		PaymentMethod: string(confirmation.Method),
		PaidAmount:    confirmation.PaidAmount.Round(2).InexactFloat64(),
	}

	err := c.do(ctx, http.MethodPut, "/api/bookings/"+url.PathEscape(bookingID)+"/payment", body, nil)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrBookingNotUnpaid
		}

		return fmt.Errorf("confirm payment for booking %s: %w", bookingID, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		js, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", domain.ErrTransient, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && res.StatusCode < 300 {
			return fmt.Errorf("%w: malformed response: %w", domain.ErrTransient, err)
		}
	}

	if err := statusError(res.StatusCode, env.Error); err != nil {
		return err
	}

	if !env.Success {
		return fmt.Errorf("%w: backend reported failure: %s", domain.ErrTransient, env.Error)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: malformed response data: %w", domain.ErrTransient, err)
	}

	return nil
}

// statusError maps a backend status code and error text to a domain error.
func statusError(status int, message string) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, message)
	case status == http.StatusConflict:
		return conflictError(message)
	case status == http.StatusBadRequest && unavailableSeatPattern.MatchString(message):
		return conflictError(message)
	case status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: backend answered %d: %s", domain.ErrTransient, status, message)
	default:
		return fmt.Errorf("backend answered %d: %s", status, message)
	}
}

func conflictError(message string) *domain.SeatConflictError {
	conflict := &domain.SeatConflictError{}

	for _, match := range unavailableSeatPattern.FindAllStringSubmatch(message, -1) {
		conflict.SeatIDs = append(conflict.SeatIDs, match[1])
	}

	return conflict
}
