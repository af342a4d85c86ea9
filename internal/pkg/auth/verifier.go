// Package auth verifies identity-provider session tokens via JWKS.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

var ErrInvalidToken = errors.New("invalid token")

// Claims are the verified token details the service relies on.
type Claims struct {
	Subject   string
	Issuer    string
	SessionID string
	ExpiresAt time.Time
}

// Verifier validates RS256 session JWTs against the issuer's key set.
type Verifier struct {
	issuer  string
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

type Options struct {
	Issuer string
	// Audience is optional; Clerk session tokens carry none by default.
	Audience string
	// JWKSURL defaults to <issuer>/.well-known/jwks.json.
	JWKSURL string
}

// NewVerifier fetches the key set in the background for as long as ctx lives.
func NewVerifier(ctx context.Context, opts Options) (*Verifier, error) {
	issuer := normalizeIssuer(opts.Issuer)
	if issuer == "" {
		return nil, errors.New("issuer must be set")
	}
	jwksURL := strings.TrimSpace(opts.JWKSURL)
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}

	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}
	return NewVerifierWithKeyfunc(issuer, opts.Audience, kf.Keyfunc), nil
}

// NewVerifierWithKeyfunc builds a verifier over an existing key lookup.
func NewVerifierWithKeyfunc(issuer, audience string, kf jwt.Keyfunc) *Verifier {
	issuer = normalizeIssuer(issuer)
	parserOpts := []jwt.ParserOption{
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if audience = strings.TrimSpace(audience); audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(audience))
	}
	return &Verifier{
		issuer:  issuer,
		keyfunc: kf,
		parser:  jwt.NewParser(parserOpts...),
	}
}

// Verify parses and validates a token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject:   readString(mapClaims, "sub"),
		Issuer:    readString(mapClaims, "iss"),
		SessionID: readString(mapClaims, "sid"),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return claims, nil
}

func normalizeIssuer(issuer string) string {
	return strings.TrimRight(strings.TrimSpace(issuer), "/")
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

// ExtractBearerToken returns the token from an "Authorization: Bearer" value.
func ExtractBearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
