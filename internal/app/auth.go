package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/identity"
)

// Login sends the browser to the identity provider. The provider calls
// LoginCallback with a signed token and the returnTo it was given.
func (app *Application) Login(w http.ResponseWriter, r *http.Request, params api.LoginParams) {
	returnTo := safeReturnTo(value(params.ReturnTo))

	http.Redirect(w, r, app.identity.LoginURL(returnTo), http.StatusSeeOther)
}

func (app *Application) LoginCallback(w http.ResponseWriter, r *http.Request, params api.LoginCallbackParams) {
	logger := app.contextGetLogger(r)

	token := value(params.Token)
	if token == "" {
		app.badRequestResponse(w, r, errors.New("missing identity token"))
		return
	}

	session, err := app.identity.ParseToken(token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			logger.Warn("login callback with invalid token", "error", err)
			app.errorResponse(w, r, http.StatusUnauthorized, identity.ErrInvalidToken.Error())
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	oldSessionId := app.sessionManager.Token(r.Context())

	// To help prevent session fixation attacks we should renew the session token after any privilege level change.
	// https://github.com/OWASP/CheatSheetSeries/blob/master/cheatsheets/Session_Management_Cheat_Sheet.md#renew-the-session-id-after-any-privilege-level-change
	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	newSessionId := app.sessionManager.Token(r.Context())

	// the guest's workflow carries on under the signed-in session
	err = app.store.Migrate(r.Context(), oldSessionId, newSessionId)
	if err != nil {
		logger.Error(
			"failed to migrate booking workflow",
			"error", err,
			"oldSessionId", oldSessionId,
			"newSessionId", newSessionId,
		)
	}

	app.putSession(r, session)

	logger.Info("user signed in", "user_id", session.UserID)

	http.Redirect(w, r, safeReturnTo(value(params.ReturnTo)), http.StatusSeeOther)
}

func (app *Application) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := api.SessionResponse{}

	if session := app.currentSession(r); session != nil {
		resp = api.SessionResponse{
			Authenticated: true,
			UserId:        session.UserID,
			Name:          session.Name,
			Email:         session.Email,
			Picture:       session.Picture,
		}
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// Logout signs the user out and drops any booking workflow of the session.
func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetSession(r)

	err := app.store.Delete(r.Context(), app.sessionManager.Token(r.Context()))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.sessionManager.Destroy(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("user signed out", "user_id", session.UserID)

	w.WriteHeader(http.StatusNoContent)
}
