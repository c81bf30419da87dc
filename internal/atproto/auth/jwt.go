// Package auth reads the claims of the access tokens handed to the web client.
// Tokens are issued by the tweet API; the client only needs to know who they
// belong to and when they stop being valid.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrMissingSubject is returned for tokens without a 'sub' claim
	ErrMissingSubject = errors.New("token has no subject")
	// ErrNoSecret is returned when verification is required but no secret is configured
	ErrNoSecret = errors.New("token secret not configured")
)

// clockSkew is the leeway allowed on exp/nbf/iat checks
const clockSkew = 30 * time.Second

// Claims are the token claims the web client cares about
type Claims struct {
	ExpiresAt time.Time
	Subject   string
}

// Expired reports whether the token is past its expiry at now.
// Tokens without an exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt.Add(clockSkew))
}

// Parser parses access tokens, verifying their HS256 signature unless
// skipVerify is set
type Parser struct {
	now        func() time.Time
	issuer     string
	secret     []byte
	skipVerify bool
}

// NewParser creates a token parser.
// skipVerify only parses and validates claims; it is meant for local development.
func NewParser(secret []byte, skipVerify bool) *Parser {
	return &Parser{
		secret:     secret,
		skipVerify: skipVerify,
		now:        time.Now,
	}
}

// WithIssuer makes Parse reject tokens whose 'iss' claim is not issuer.
// An empty issuer accepts any.
func (p *Parser) WithIssuer(issuer string) *Parser {
	p.issuer = issuer
	return p
}

// Parse validates tokenString and returns its claims
func (p *Parser) Parse(tokenString string) (*Claims, error) {
	tokenString = stripBearerPrefix(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("parse token: empty token")
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(clockSkew),
		jwt.WithClock(jwt.ClockFunc(p.now)),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	if p.skipVerify {
		opts = append(opts, jwt.WithVerify(false))
	} else {
		if len(p.secret) == 0 {
			return nil, ErrNoSecret
		}
		opts = append(opts, jwt.WithKey(jwa.HS256, p.secret))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims := &Claims{
		Subject:   token.Subject(),
		ExpiresAt: token.Expiration(),
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// stripBearerPrefix removes the "Bearer " prefix from a token string
func stripBearerPrefix(tokenString string) string {
	tokenString = strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer ")
	return strings.TrimSpace(tokenString)
}
