//go:build !integration

package usecase

import (
	"errors"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestTokenGenerator_ShapeAndUniqueness(t *testing.T) {
	g := NewTokenGenerator(nil)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok := g.Generate()
		if !IsWellFormedToken(tok) {
			t.Fatalf("malformed token %q", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = struct{}{}
	}
}

func TestTokenGenerator_FallbackStillProducesTokens(t *testing.T) {
	g := &TokenGenerator{src: failingReader{}}
	a, b := g.Generate(), g.Generate()
	if !IsWellFormedToken(a) || !IsWellFormedToken(b) {
		t.Fatalf("fallback produced malformed tokens %q %q", a, b)
	}
	if a == b {
		t.Fatal("fallback produced identical tokens")
	}
}

func TestIsWellFormedToken(t *testing.T) {
	cases := map[string]bool{
		"":                      false,
		"abc":                   false,
		"ABCDEF0123456789abcdef0123456789abcdef0123456789": false,
		"0123456789abcdef0123456789abcdef0123456789abcdef": true,
		"0123456789abcdef0123456789abcdef0123456789abcdeg": false,
	}
	for in, want := range cases {
		if got := IsWellFormedToken(in); got != want {
			t.Errorf("IsWellFormedToken(%q) = %v, want %v", in, got, want)
		}
	}
}
