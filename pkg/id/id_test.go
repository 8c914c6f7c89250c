package id

import "testing"

func TestTokenLength(t *testing.T) {
	if got := len(Token()); got != 16 {
		t.Fatalf("token length: %d", got)
	}
	if got := len(TokenN(16)); got != 32 {
		t.Fatalf("token length: %d", got)
	}
	if got := len(TokenN(0)); got != 16 {
		t.Fatalf("token length for n=0: %d", got)
	}
}

func TestTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		tok := Token()
		if seen[tok] {
			t.Fatalf("duplicate token after %d draws: %s", i, tok)
		}
		seen[tok] = true
	}
}

func TestTokenIsHex(t *testing.T) {
	tok := Token()
	for _, c := range tok {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("non-hex character %q in %s", c, tok)
		}
	}
}
