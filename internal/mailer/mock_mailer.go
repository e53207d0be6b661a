package mailer

import (
	"sync"
)

// Delivery is one email handed to a MockMailer.
type Delivery struct {
	Recipient string
	Template  string
	Data      any
}

// MockMailer keeps deliveries in memory instead of sending them.
type MockMailer struct {
	mu         sync.Mutex
	deliveries []Delivery
	err        error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.deliveries = append(m.deliveries, Delivery{
		Recipient: recipient,
		Template:  templateFile,
		Data:      data,
	})

	return nil
}

// FailWith makes every following Send return err. A nil err lets them
// through again.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *MockMailer) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Delivery(nil), m.deliveries...)
}

// Confirmations returns the booking confirmations delivered so far.
func (m *MockMailer) Confirmations() []BookingConfirmation {
	var confirmations []BookingConfirmation

	for _, d := range m.Deliveries() {
		if c, ok := d.Data.(BookingConfirmation); ok && d.Template == BookingConfirmationTemplate {
			confirmations = append(confirmations, c)
		}
	}

	return confirmations
}
