package identity

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

var ErrInvalidToken = errors.New("invalid identity token")

// Claims is what the identity provider signs into the token it hands back on
// the login callback.
type Claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Provider talks to an OAuth identity provider that signs in users on its own
// pages and redirects back with an HS256 token.
type Provider struct {
	loginURL string
	issuer   string
	secret   []byte
}

func NewProvider(loginURL, issuer, secret string) *Provider {
	return &Provider{
		loginURL: loginURL,
		issuer:   issuer,
		secret:   []byte(secret),
	}
}

func (p *Provider) LoginURL(returnTo string) string {
	u, err := url.Parse(p.loginURL)
	if err != nil {
		return p.loginURL
	}

	q := u.Query()
	q.Set("returnTo", returnTo)
	u.RawQuery = q.Encode()

	return u.String()
}

// ParseToken verifies the callback token and returns the session it carries.
func (p *Provider) ParseToken(token string) (*domain.Session, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &domain.Session{
		UserID:  claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}, nil
}

// IssueToken signs a session the same way the identity provider does.
func (p *Provider) IssueToken(session domain.Session, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Name:    session.Name,
		Email:   session.Email,
		Picture: session.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
