package domain

// Session is the identity of a signed-in user as issued by the identity
// provider. It is owned by the provider and read-only here.
type Session struct {
	UserID  string
	Name    string
	Email   string
	Picture string
}

type IdentityProvider interface {
	// LoginURL returns the provider-hosted sign-in page that sends the user
	// back to returnTo once signed in.
	LoginURL(returnTo string) string
}
