package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/events"
	"github.com/metinatakli/cinex-booking/internal/identity"
	"github.com/metinatakli/cinex-booking/internal/mailer"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/metinatakli/cinex-booking/internal/workflow"
	"github.com/shopspring/decimal"
)

const (
	testShowtimeID = "st-1"
	testLoginURL   = "https://id.example.com/login"
	testIssuer     = "cinex-id"
	testSecret     = "test-secret"
)

var testUser = domain.Session{
	UserID:  "google-123",
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Picture: "https://example.com/ada.png",
}

// memoryStore keeps snapshots as JSON so every request works on its own copy,
// the way the redis store does.
type memoryStore struct {
	mu    sync.Mutex
	snaps map[string][]byte
	locks map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		snaps: make(map[string][]byte),
		locks: make(map[string]bool),
	}
}

func (m *memoryStore) Load(ctx context.Context, sessionToken string) (*workflow.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.snaps[sessionToken]
	if !ok {
		return nil, ErrWorkflowNotFound
	}

	var snap workflow.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

func (m *memoryStore) Save(ctx context.Context, sessionToken string, snap workflow.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snaps[sessionToken] = data
	return nil
}

func (m *memoryStore) SaveIfCurrent(ctx context.Context, sessionToken string, snap workflow.Snapshot) error {
	current, err := m.Load(ctx, sessionToken)
	if err != nil || current.ID != snap.ID {
		return domain.ErrWorkflowClosed
	}

	return m.Save(ctx, sessionToken, snap)
}

func (m *memoryStore) Delete(ctx context.Context, sessionToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snaps, sessionToken)
	return nil
}

func (m *memoryStore) Lock(ctx context.Context, workflowID string) (func(context.Context) error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks[workflowID] {
		return nil, domain.ErrSubmissionInProgress
	}
	m.locks[workflowID] = true

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.locks, workflowID)
		return nil
	}, nil
}

func (m *memoryStore) Locked(ctx context.Context, workflowID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.locks[workflowID], nil
}

func (m *memoryStore) Migrate(ctx context.Context, oldToken, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.snaps[oldToken]; ok {
		m.snaps[newToken] = data
		delete(m.snaps, oldToken)
	}

	return nil
}

// expireAll drops every stored workflow, as if their TTL ran out.
func (m *memoryStore) expireAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.snaps)
}

func (m *memoryStore) workflowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.snaps)
}

func seat(id, row string, number int, seatType, price string, status domain.SeatStatus) domain.Seat {
	return domain.Seat{
		ID:     id,
		Row:    row,
		Number: number,
		Type:   seatType,
		Price:  decimal.RequireFromString(price),
		Status: status,
	}
}

// testShowtime returns a fresh seat map on every call: A1, A2 and B1 are free,
// A3 is booked.
func testShowtime() *domain.ShowtimeDetails {
	return &domain.ShowtimeDetails{
		ShowtimeID: testShowtimeID,
		MovieID:    603,
		Theater:    domain.Theater{ID: "th-1", Name: "Grand Cinema", Address: "MG Road"},
		ShowTime:   time.Date(2030, 7, 1, 19, 30, 0, 0, time.UTC),
		Rows: map[string][]domain.Seat{
			"A": {
				seat("A1", "A", 1, "standard", "150", domain.SeatAvailable),
				seat("A2", "A", 2, "standard", "150", domain.SeatAvailable),
				seat("A3", "A", 3, "standard", "150", domain.SeatBooked),
			},
			"B": {
				seat("B1", "B", 1, "premium", "250", domain.SeatAvailable),
			},
		},
	}
}

type testEnv struct {
	app       *Application
	store     *memoryStore
	catalog   *mocks.MockCatalogService
	bookings  *mocks.MockBookingService
	payments  *payment.MockPaymentProvider
	identity  *identity.Provider
	mailer    *mailer.MockMailer
	publisher *events.MockPublisher
}

func newTestApplication(opts ...func(*testEnv)) *testEnv {
	env := &testEnv{
		store: newMemoryStore(),
		catalog: &mocks.MockCatalogService{
			GetShowtimeDetailsFunc: func(ctx context.Context, showtimeID string) (*domain.ShowtimeDetails, error) {
				if showtimeID != testShowtimeID {
					return nil, domain.ErrRecordNotFound
				}
				return testShowtime(), nil
			},
		},
		bookings: &mocks.MockBookingService{
			CreateBookingFunc: func(ctx context.Context, req domain.BookingRequest) (*domain.BookingRecord, error) {
				return &domain.BookingRecord{
					BookingID:     "CF20300701123456",
					ShowtimeID:    req.ShowtimeID,
					ShowTime:      time.Date(2030, 7, 1, 19, 30, 0, 0, time.UTC),
					SeatIDs:       req.SeatIDs,
					TheaterName:   "Grand Cinema",
					CustomerName:  req.Customer.Name,
					CustomerEmail: req.Customer.Email,
					PaymentStatus: domain.PaymentStatusPending,
				}, nil
			},
			ConfirmPaymentFunc: func(ctx context.Context, bookingID string, confirmation domain.PaymentConfirmation) error {
				return nil
			},
		},
		payments:  payment.NewMockPaymentProvider(),
		identity:  identity.NewProvider(testLoginURL, testIssuer, testSecret),
		mailer:    mailer.NewMockMailer(),
		publisher: events.NewMockPublisher(),
	}

	for _, opt := range opts {
		opt(env)
	}

	cfg := Config{
		Env:         "test",
		Currency:    "INR",
		WorkflowTTL: 20 * time.Minute,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env.app = &Application{
		config:         cfg,
		logger:         logger,
		validator:      validator.NewValidator(),
		mailer:         env.mailer,
		publisher:      env.publisher,
		sessionManager: scs.New(),
		identity:       env.identity,
		catalog:        env.catalog,
		store:          env.store,
		submitter:      workflow.NewSubmitter(env.bookings, env.payments, cfg.Currency, logger),
		metrics:        newBookingMetrics(),
	}

	return env
}

// testClient sends requests through the full router and carries the session
// cookie from one response to the next request, like a browser.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (env *testEnv) newClient(t *testing.T) *testClient {
	return &testClient{
		t:       t,
		handler: env.app.Routes(),
		cookies: make(map[string]*http.Cookie),
	}
}

func (c *testClient) do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, target, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range c.cookies {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)

	for _, cookie := range w.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}

	return w
}

// signIn completes the identity provider callback for user.
func (c *testClient) signIn(env *testEnv, user domain.Session, returnTo string) *httptest.ResponseRecorder {
	c.t.Helper()

	token, err := env.identity.IssueToken(user, time.Minute)
	if err != nil {
		c.t.Fatal(err)
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("returnTo", returnTo)

	return c.do(http.MethodGet, "/auth/callback?"+q.Encode(), nil)
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return v
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if tt.wantErrMessage != "" && !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}
