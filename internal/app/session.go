package app

import (
	"net/http"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/workflow"
)

type sessionKey string

const (
	SessionKeyUserId  = sessionKey("userID")
	SessionKeyName    = sessionKey("userName")
	SessionKeyEmail   = sessionKey("userEmail")
	SessionKeyPicture = sessionKey("userPicture")
	SessionKeyGuest   = sessionKey("guest")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) putSession(r *http.Request, session *domain.Session) {
	ctx := r.Context()

	app.sessionManager.Remove(ctx, SessionKeyGuest.String())
	app.sessionManager.Put(ctx, SessionKeyUserId.String(), session.UserID)
	app.sessionManager.Put(ctx, SessionKeyName.String(), session.Name)
	app.sessionManager.Put(ctx, SessionKeyEmail.String(), session.Email)
	app.sessionManager.Put(ctx, SessionKeyPicture.String(), session.Picture)
}

// currentSession returns the signed-in user of the request, or nil for a
// guest.
func (app *Application) currentSession(r *http.Request) *domain.Session {
	ctx := r.Context()

	userID := app.sessionManager.GetString(ctx, SessionKeyUserId.String())
	if userID == "" {
		return nil
	}

	return &domain.Session{
		UserID:  userID,
		Name:    app.sessionManager.GetString(ctx, SessionKeyName.String()),
		Email:   app.sessionManager.GetString(ctx, SessionKeyEmail.String()),
		Picture: app.sessionManager.GetString(ctx, SessionKeyPicture.String()),
	}
}

func (app *Application) contextGetSession(r *http.Request) *domain.Session {
	session, ok := r.Context().Value(SessionKeyUserId).(*domain.Session)
	if !ok {
		panic("missing session from context")
	}

	return session
}

// newGate builds the auth gate of a request. Users sent off to sign in come
// back to the seat map of the showtime.
func (app *Application) newGate(r *http.Request, showtimeID string) *workflow.Gate {
	return workflow.NewGate(app.currentSession(r), app.identity, seatMapPath(showtimeID))
}
