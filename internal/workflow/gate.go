package workflow

import (
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// Gate is a read adapter over the session owned by the identity provider.
// A nil session means the user is not signed in.
type Gate struct {
	session  *domain.Session
	identity domain.IdentityProvider
	returnTo string
}

// NewGate builds a gate for one request. returnTo is where the identity
// provider sends the user back after signing in.
func NewGate(session *domain.Session, identity domain.IdentityProvider, returnTo string) *Gate {
	return &Gate{
		session:  session,
		identity: identity,
		returnTo: returnTo,
	}
}

func (g *Gate) IsAuthenticated() bool {
	return g != nil && g.session != nil && g.session.UserID != ""
}

func (g *Gate) CurrentSession() (domain.Session, bool) {
	if !g.IsAuthenticated() {
		return domain.Session{}, false
	}

	return *g.session, true
}

// RequireSession returns the current session or an AuthRequiredError holding
// the sign-in page. Every failed call asks the identity provider for exactly
// one login URL and it is up to the caller to follow it.
func (g *Gate) RequireSession() (domain.Session, error) {
	if session, ok := g.CurrentSession(); ok {
		return session, nil
	}

	redirectURL := ""
	if g != nil && g.identity != nil {
		redirectURL = g.identity.LoginURL(g.returnTo)
	}

	return domain.Session{}, &domain.AuthRequiredError{RedirectURL: redirectURL}
}
