package token

import (
	"strings"
	"testing"
)

func TestNew_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 32 bytes base64url without padding is 43 characters
		if len(tok) != 43 {
			t.Fatalf("unexpected token length %d: %q", len(tok), tok)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token not URL-safe: %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestVerify(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !Verify(tok, tok) {
		t.Fatal("equal tokens must match")
	}

	// flip one character, same length
	flipped := []byte(tok)
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}
	if Verify(string(flipped), tok) {
		t.Fatal("one-character difference must not match")
	}

	if Verify(tok[:len(tok)-1], tok) {
		t.Fatal("shorter candidate must not match")
	}
	if Verify(tok+"x", tok) {
		t.Fatal("longer candidate must not match")
	}
	if Verify("", tok) {
		t.Fatal("empty candidate must not match")
	}
	if Verify(tok, "") {
		t.Fatal("empty stored value must not match")
	}
}

func TestFragment(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frag := Fragment(tok)
	if len(frag) != 8 {
		t.Fatalf("expected 8-char fragment, got %q", frag)
	}
	if Fragment(tok) != frag {
		t.Fatal("fragment must be stable for the same token")
	}
	if strings.Contains(tok, frag) {
		t.Fatal("fragment must not be a substring of the token")
	}
}
