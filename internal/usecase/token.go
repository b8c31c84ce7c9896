package usecase

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	mrand "math/rand"

	"corporate-gifting/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const (
	// TokenBytes is the entropy of an invite token (192 bits).
	TokenBytes = 24
	// TokenLength is the rendered length: lower-case hex, two chars per byte.
	TokenLength = TokenBytes * 2
)

// TokenGenerator produces opaque invite tokens.
//
// If the secure source fails it falls back to math/rand instead of failing the
// issuance. Tokens from that path are guessable in principle; each one is logged
// at WARN and counted in gift_token_fallback_total.
type TokenGenerator struct {
	src io.Reader
	log *zerolog.Logger
}

// NewTokenGenerator uses crypto/rand. logger may be nil.
func NewTokenGenerator(logger *zerolog.Logger) *TokenGenerator {
	return &TokenGenerator{src: rand.Reader, log: logger}
}

// Generate never fails; see the type comment for the fallback path.
func (g *TokenGenerator) Generate() string {
	buf := make([]byte, TokenBytes)
	if _, err := io.ReadFull(g.src, buf); err != nil {
		if g.log != nil {
			g.log.Warn().Err(err).Msg("secure random source unavailable; issuing token from fallback source")
		}
		metrics.IncTokenFallback()
		fillPseudoRandom(buf)
	}
	return hex.EncodeToString(buf)
}

func fillPseudoRandom(buf []byte) {
	var word [8]byte
	for i := 0; i < len(buf); i += 8 {
		binary.LittleEndian.PutUint64(word[:], mrand.Uint64())
		copy(buf[i:], word[:])
	}
}

// IsWellFormedToken reports whether s has the shape of a generated token.
// Used to reject junk before it reaches the store.
func IsWellFormedToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
