package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmed is published once a booking is paid for.
type BookingConfirmed struct {
	BookingID     string   `json:"booking_id"`
	ShowtimeID    string   `json:"showtime_id"`
	ShowTime      string   `json:"show_time"`
	TheaterName   string   `json:"theater_name"`
	SeatIDs       []string `json:"seats"`
	CustomerID    string   `json:"customer_id"`
	CustomerEmail string   `json:"customer_email"`
	TransactionID string   `json:"transaction_id,omitempty"`
	PaidAmount    string   `json:"paid_amount"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

func NewBookingConfirmed(
	booking *domain.BookingRecord,
	customer domain.Session,
	receipt *domain.PaymentReceipt,
	confirmedAt time.Time) BookingConfirmed {

	event := BookingConfirmed{
		BookingID:     booking.BookingID,
		ShowtimeID:    booking.ShowtimeID,
		ShowTime:      booking.ShowTime.UTC().Format(time.RFC3339),
		TheaterName:   booking.TheaterName,
		SeatIDs:       booking.SeatIDs,
		CustomerID:    customer.UserID,
		CustomerEmail: booking.CustomerEmail,
		ConfirmedAt:   confirmedAt.UTC().Format(time.RFC3339),
	}

	if receipt != nil {
		event.TransactionID = receipt.TransactionID
		event.PaidAmount = receipt.Amount.StringFixed(2)
	}

	return event
}

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error
}

// AMQPPublisher publishes persistent JSON messages to a durable queue over a
// single channel.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	_, err = ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ch.Close()
	return p.conn.Close()
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.RWMutex
	events []BookingConfirmed
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Events() []BookingConfirmed {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]BookingConfirmed, len(m.events))
	copy(events, m.events)
	return events
}
