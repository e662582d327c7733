package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colhash/internal/config"
)

// makeToken creates a signed HS256 JWT from the given secret and claims.
func makeToken(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}

func ptrStr(s string) *string { return &s }

func TestSharedSecretValidator_Validate(t *testing.T) {
	t.Parallel()

	const secret = "test-secret-32-bytes-long-xxxxx"

	tests := []struct {
		name      string
		audience  string
		token     string
		wantErr   string
		wantSub   string
		wantIss   string
		wantEmail *string
		wantAud   []string
	}{
		{
			name: "valid token with all claims",
			token: makeToken(secret, jwt.MapClaims{
				"sub":   "user-123",
				"iss":   "https://auth.example.com",
				"email": "user@example.com",
				"aud":   "colhash",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
			wantSub:   "user-123",
			wantIss:   "https://auth.example.com",
			wantEmail: ptrStr("user@example.com"),
			wantAud:   []string{"colhash"},
		},
		{
			name: "valid token with only subject",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-456",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantSub: "user-456",
		},
		{
			name:     "audience checked when configured",
			audience: "colhash",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-789",
				"aud": []string{"other", "colhash"},
			}),
			wantSub: "user-789",
			wantAud: []string{"other", "colhash"},
		},
		{
			name:     "wrong audience returns error",
			audience: "colhash",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-789",
				"aud": "other",
			}),
			wantErr: "jwt parse:",
		},
		{
			name: "missing subject returns error",
			token: makeToken(secret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantErr: "missing sub",
		},
		{
			name: "expired token returns error",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-expired",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			wantErr: "jwt parse:",
		},
		{
			name: "wrong secret returns error",
			token: makeToken("wrong-secret", jwt.MapClaims{
				"sub": "user-wrong",
			}),
			wantErr: "jwt parse:",
		},
		{
			name: "RS256 token rejected",
			token: func() string {
				key, _ := rsa.GenerateKey(rand.Reader, 2048)
				tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "rsa-user"})
				signed, _ := tok.SignedString(key)
				return signed
			}(),
			wantErr: "jwt parse:",
		},
		{
			name:    "malformed token returns error",
			token:   "not.a.valid.jwt.token",
			wantErr: "jwt parse:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewSharedSecretValidator(secret, tt.audience)
			claims, err := v.Validate(context.Background(), tt.token)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, claims.Subject)
			assert.Equal(t, tt.wantIss, claims.Issuer)
			assert.Equal(t, tt.wantAud, claims.Audience)
			if tt.wantEmail != nil {
				require.NotNil(t, claims.Email)
				assert.Equal(t, *tt.wantEmail, *claims.Email)
			} else {
				assert.Nil(t, claims.Email)
			}
		})
	}
}

func TestNewValidator(t *testing.T) {
	t.Parallel()

	v, err := NewValidator(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewValidator(context.Background(), config.AuthConfig{JWTSecret: "s3cret", Audience: "colhash"})
	require.NoError(t, err)
	shared, ok := v.(*SharedSecretValidator)
	require.True(t, ok)
	assert.Equal(t, "colhash", shared.audience)
}

func TestNewOIDCValidator_DiscoveryFails(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewOIDCValidator(ctx, "http://127.0.0.1:1/unreachable", "colhash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oidc provider discovery")
}
