package anonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// TokenLength is the length, in hex characters, of every generated token.
const TokenLength = 64

// secretSize is the number of random bytes keying each digest.
const secretSize = 32

// Algorithm selects the keyed digest used to derive tokens.
type Algorithm string

// Supported token algorithms.
const (
	AlgorithmHMACSHA256 Algorithm = "hmac-sha256"
	AlgorithmBLAKE2b    Algorithm = "blake2b"
)

// ParseAlgorithm resolves an algorithm name. An empty name selects
// AlgorithmHMACSHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", AlgorithmHMACSHA256:
		return AlgorithmHMACSHA256, nil
	case AlgorithmBLAKE2b:
		return AlgorithmBLAKE2b, nil
	default:
		return "", fmt.Errorf("unsupported token algorithm %q (want %s or %s)", name, AlgorithmHMACSHA256, AlgorithmBLAKE2b)
	}
}

// Generator mints tokens for column names. Each call to Generate reads a
// fresh secret from the random source, so the same name never maps to the
// same token twice.
type Generator struct {
	rand      io.Reader
	algorithm Algorithm
}

// NewGenerator creates a Generator reading secrets from rand. Production
// callers pass crypto/rand.Reader.
func NewGenerator(rand io.Reader, algorithm Algorithm) *Generator {
	if algorithm == "" {
		algorithm = AlgorithmHMACSHA256
	}
	return &Generator{rand: rand, algorithm: algorithm}
}

// Generate returns a TokenLength hex token for name. An error means the
// random source failed and no token can be issued.
func (g *Generator) Generate(name string) (string, error) {
	secret := make([]byte, secretSize)
	if _, err := io.ReadFull(g.rand, secret); err != nil {
		return "", fmt.Errorf("read token secret: %w", err)
	}

	mac, err := g.newMAC(secret)
	if err != nil {
		return "", err
	}
	_, _ = mac.Write([]byte(name))

	token := hex.EncodeToString(mac.Sum(nil))
	if len(token) > TokenLength {
		token = token[:TokenLength]
	}
	return token, nil
}

func (g *Generator) newMAC(secret []byte) (hash.Hash, error) {
	switch g.algorithm {
	case AlgorithmHMACSHA256:
		return hmac.New(sha256.New, secret), nil
	case AlgorithmBLAKE2b:
		h, err := blake2b.New256(secret)
		if err != nil {
			return nil, fmt.Errorf("init blake2b: %w", err)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unsupported token algorithm %q", g.algorithm)
	}
}
