package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, cookie := range cookies {
		req.AddCookie(&cookie)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

// seedShowtime inserts the test theater and a showtime with rows A and B of
// four seats each. A4 is under maintenance.
func seedShowtime(t testing.TB, db *pgxpool.Pool, showtimeID string, showTime time.Time) {
	t.Helper()

	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO theaters (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, TestTheaterID, TestTheaterName, TestTheaterAddress)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO showtimes (id, movie_id, theater_id, show_time)
		VALUES ($1, $2, $3, $4)
	`, showtimeID, TestMovieID, TestTheaterID, showTime)
	require.NoError(t, err)

	for _, row := range []string{"A", "B"} {
		seatType, price := "standard", "150.00"
		if row == "B" {
			seatType, price = "premium", "250.00"
		}

		for n := 1; n <= 4; n++ {
			status := domain.SeatAvailable
			if row == "A" && n == 4 {
				status = domain.SeatMaintenance
			}

			_, err = db.Exec(ctx, `
				INSERT INTO seats (showtime_id, seat_id, row_id, seat_number, seat_type, price, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, showtimeID, fmt.Sprintf("%s%d", row, n), row, n, seatType, price, string(status))
			require.NoError(t, err)
		}
	}
}

func truncateTables(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `TRUNCATE booked_seats, bookings, seats, showtimes, theaters CASCADE`)
	require.NoError(t, err)
}

// browser is an HTTP client against the test server that keeps cookies and
// does not follow redirects.
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, serverURL string) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t: t,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: serverURL,
	}
}

func (b *browser) do(method, path string, body string) (*http.Response, []byte) {
	b.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, b.base+path, reader)
	require.NoError(b.t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)

	return res, raw
}

func (b *browser) signIn(testApp *TestApp, session domain.Session, returnTo string) *http.Response {
	b.t.Helper()

	token, err := testApp.Identity.IssueToken(session, time.Minute)
	require.NoError(b.t, err)

	q := url.Values{}
	q.Set("token", token)
	q.Set("returnTo", returnTo)

	res, _ := b.do(http.MethodGet, "/auth/callback?"+q.Encode(), "")
	return res
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))

	return v
}
