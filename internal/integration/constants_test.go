package integration_test

import "time"

const (
	// Showtime related constants
	TestTheaterID      = "th-grand"
	TestTheaterName    = "Grand Cinema"
	TestTheaterAddress = "MG Road"
	TestShowtimeID     = "st-grand-1930"
	TestMovieID        = 603

	// Identity related constants
	TestIdentityLoginURL = "https://id.example.com/login"
	TestIdentityIssuer   = "cinex-id"
	TestIdentitySecret   = "integration-secret"

	TestUserID    = "google-123"
	TestUserName  = "Ada Lovelace"
	TestUserEmail = "ada@example.com"
)

var TestShowTime = time.Now().Add(48 * time.Hour).UTC().Truncate(time.Minute)
