package anonymize

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestGenerator_HMACMatchesKeyedDigest(t *testing.T) {
	secret := bytes.Repeat([]byte{0x2a}, secretSize)
	gen := NewGenerator(bytes.NewReader(secret), AlgorithmHMACSHA256)

	token, err := gen.Generate("email")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("email"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), token)
	assert.Len(t, token, TokenLength)
}

func TestGenerator_BLAKE2bMatchesKeyedDigest(t *testing.T) {
	secret := bytes.Repeat([]byte{0x07}, secretSize)
	gen := NewGenerator(bytes.NewReader(secret), AlgorithmBLAKE2b)

	token, err := gen.Generate("email")
	require.NoError(t, err)

	h, err := blake2b.New256(secret)
	require.NoError(t, err)
	h.Write([]byte("email"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), token)
	assert.Len(t, token, TokenLength)
}

func TestGenerator_FreshSecretPerCall(t *testing.T) {
	gen := NewGenerator(rand.Reader, AlgorithmHMACSHA256)

	a, err := gen.Generate("id")
	require.NoError(t, err)
	b, err := gen.Generate("id")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same name must not map to the same token twice")
	assert.Len(t, a, TokenLength)
	assert.Len(t, b, TokenLength)
}

func TestGenerator_ReaderFailure(t *testing.T) {
	gen := NewGenerator(failingReader{}, AlgorithmHMACSHA256)
	_, err := gen.Generate("id")
	require.Error(t, err)
	assert.ErrorIs(t, err, errTest)
}

func TestGenerator_ShortRead(t *testing.T) {
	gen := NewGenerator(bytes.NewReader([]byte{1, 2, 3}), AlgorithmHMACSHA256)
	_, err := gen.Generate("id")
	require.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", AlgorithmHMACSHA256, false},
		{"hmac-sha256", AlgorithmHMACSHA256, false},
		{" BLAKE2b ", AlgorithmBLAKE2b, false},
		{"md5", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
