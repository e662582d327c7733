// Package middleware provides HTTP middleware for request IDs, rate limiting
// and bearer token authentication.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"colhash/internal/config"
)

// JWTClaims holds the parsed claims from a validated JWT.
type JWTClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Email    *string
}

// JWTValidator validates a JWT token and returns the parsed claims.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// NewValidator builds the validator selected by cfg: OIDC when an issuer is
// set, otherwise a shared secret. It returns nil when auth is disabled.
func NewValidator(ctx context.Context, cfg config.AuthConfig) (JWTValidator, error) {
	switch {
	case cfg.OIDCEnabled():
		return NewOIDCValidator(ctx, cfg.IssuerURL, cfg.Audience)
	case cfg.JWTSecret != "":
		return NewSharedSecretValidator(cfg.JWTSecret, cfg.Audience), nil
	default:
		return nil, nil
	}
}

// OIDCValidator validates JWTs using OIDC discovery and JWKS.
type OIDCValidator struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCValidator creates a validator from an OIDC issuer URL.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCValidator{verifier: provider.Verifier(&oidc.Config{ClientID: audience})}, nil
}

// Validate verifies the JWT against the provider's JWKS.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var raw struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	claims := &JWTClaims{
		Subject:  idToken.Subject,
		Issuer:   idToken.Issuer,
		Audience: idToken.Audience,
	}
	if raw.Email != "" {
		claims.Email = &raw.Email
	}
	return claims, nil
}

// SharedSecretValidator validates HS256 tokens signed with a shared secret.
type SharedSecretValidator struct {
	secret   []byte
	audience string
}

// NewSharedSecretValidator creates a validator for local/dev HS256 tokens.
// A non-empty audience must appear in the token's aud claim.
func NewSharedSecretValidator(secret, audience string) *SharedSecretValidator {
	return &SharedSecretValidator{secret: []byte(secret), audience: audience}
}

// Validate verifies a JWT signed with HS256 and extracts claims.
func (v *SharedSecretValidator) Validate(_ context.Context, tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	tok, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("jwt parse: unsupported claim type %T", tok.Claims)
	}

	claims := &JWTClaims{}
	if claims.Subject, err = mc.GetSubject(); err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if claims.Issuer, err = mc.GetIssuer(); err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	aud, err := mc.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if len(aud) > 0 {
		claims.Audience = slices.Clone([]string(aud))
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = &email
	}
	if claims.Subject == "" {
		return nil, errors.New("jwt parse: missing sub claim")
	}
	return claims, nil
}
