package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingFlowSuite struct {
	BaseSuite
}

func TestBookingFlowSuite(t *testing.T) {
	suite.Run(t, new(BookingFlowSuite))
}

func (s *BookingFlowSuite) SetupTest() {
	truncateTables(s.T(), s.app.DB)
	s.Require().NoError(s.app.Redis.FlushDB(context.Background()).Err())
	seedShowtime(s.T(), s.app.DB, TestShowtimeID, TestShowTime)
}

func (s *BookingFlowSuite) user() domain.Session {
	return domain.Session{UserID: TestUserID, Name: TestUserName, Email: TestUserEmail}
}

func (s *BookingFlowSuite) TestScenarios() {
	scenarios := []Scenario{
		{
			Name:           "healthcheck reports redis up",
			Method:         http.MethodGet,
			URL:            "/healthcheck",
			ExpectedStatus: http.StatusOK,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var health api.HealthcheckResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
				assert.Equal(t, "UP", health.Status)
				assert.Equal(t, "test", health.SystemInfo.Environment)
			},
		},
		{
			Name:             "workflow of a fresh session does not exist",
			Method:           http.MethodGet,
			URL:              "/workflow",
			ExpectedStatus:   http.StatusNotFound,
			ExpectedResponse: `{"message": "no active booking workflow"}`,
		},
		{
			Name:           "seat map of unknown showtime",
			Method:         http.MethodGet,
			URL:            "/showtimes/st-missing/seats",
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Name:           "logout without session",
			Method:         http.MethodPost,
			URL:            "/auth/logout",
			ExpectedStatus: http.StatusUnauthorized,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *BookingFlowSuite) TestGuestToConfirmedBooking() {
	b := newBrowser(s.T(), s.server.URL)

	res, raw := b.do(http.MethodPost, "/showtimes/"+TestShowtimeID+"/workflow", "")
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	s.Equal("selecting_seats", decode[api.WorkflowResponse](s.T(), raw).State)

	for _, seatID := range []string{"A1", "B1"} {
		res, raw = b.do(http.MethodPost, "/workflow/seats/"+seatID, "")
		s.Require().Equal(http.StatusOK, res.StatusCode)
		s.Equal("added", decode[api.ToggleSeatResponse](s.T(), raw).Result)
	}

	res, raw = b.do(http.MethodPost, "/workflow/advance", "")
	s.Require().Equal(http.StatusUnauthorized, res.StatusCode)

	authResp := decode[api.AuthRequiredResponse](s.T(), raw)
	s.Contains(authResp.RedirectUrl, TestIdentityLoginURL)

	res = b.signIn(s.app, s.user(), "/showtimes/"+TestShowtimeID+"/seats")
	s.Require().Equal(http.StatusSeeOther, res.StatusCode)

	res, raw = b.do(http.MethodGet, "/showtimes/"+TestShowtimeID+"/seats", "")
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal(2, decode[api.SeatMapResponse](s.T(), raw).SelectedCount)

	res, raw = b.do(http.MethodPost, "/workflow/advance", "")
	s.Require().Equal(http.StatusOK, res.StatusCode)

	wf := decode[api.WorkflowResponse](s.T(), raw)
	s.Equal("paying", wf.State)
	s.True(decimal.RequireFromString("481.44").Equal(wf.Pricing.Total))

	res, raw = b.do(http.MethodPost, "/workflow/payment", `{"paymentMethod": "upi"}`)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	wf = decode[api.WorkflowResponse](s.T(), raw)
	s.Equal("confirmed", wf.State)
	s.Require().NotNil(wf.Booking)

	stored, err := s.app.Bookings.GetBooking(context.Background(), wf.Booking.BookingId, TestUserID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusCompleted, stored.PaymentStatus)
	s.Equal([]string{"A1", "B1"}, stored.SeatIDs)

	res, raw = newBrowser(s.T(), s.server.URL).do(http.MethodGet, "/showtimes/"+TestShowtimeID+"/seats", "")
	s.Require().Equal(http.StatusOK, res.StatusCode)

	seatMap := decode[api.SeatMapResponse](s.T(), raw)
	s.Equal("booked", seatMap.Rows[0].Seats[0].State)
	s.Equal("booked", seatMap.Rows[1].Seats[0].State)

	s.app.App.Wait()

	s.Len(s.app.Mailer.Confirmations(), 1)
	s.Len(s.app.Publisher.Events(), 1)
}

func (s *BookingFlowSuite) TestSeatTakenBeforePayment() {
	first := newBrowser(s.T(), s.server.URL)
	second := newBrowser(s.T(), s.server.URL)

	for _, b := range []*browser{first, second} {
		b.signIn(s.app, s.user(), "/")

		res, _ := b.do(http.MethodPost, "/showtimes/"+TestShowtimeID+"/workflow", "")
		s.Require().Equal(http.StatusCreated, res.StatusCode)

		for _, seatID := range []string{"A2", "A3"} {
			res, _ = b.do(http.MethodPost, "/workflow/seats/"+seatID, "")
			s.Require().Equal(http.StatusOK, res.StatusCode)
		}

		res, _ = b.do(http.MethodPost, "/workflow/advance", "")
		s.Require().Equal(http.StatusOK, res.StatusCode)
	}

	res, _ := first.do(http.MethodPost, "/workflow/payment", `{"paymentMethod": "card"}`)
	s.Require().Equal(http.StatusOK, res.StatusCode)

	res, raw := second.do(http.MethodPost, "/workflow/payment", `{"paymentMethod": "card"}`)
	s.Require().Equal(http.StatusConflict, res.StatusCode)
	s.ElementsMatch([]string{"A2", "A3"}, decode[api.SeatConflictResponse](s.T(), raw).SeatIds)

	res, raw = second.do(http.MethodGet, "/workflow", "")
	s.Require().Equal(http.StatusOK, res.StatusCode)

	wf := decode[api.WorkflowResponse](s.T(), raw)
	s.Equal("selecting_seats", wf.State)
	s.Empty(wf.Seats)
}
