package auth

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	alphabet := "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	code, err := GenerateCode(alphabet, 6)
	if err != nil {
		t.Fatalf("failed to generate code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 characters, got %d (%q)", len(code), code)
	}
	seen := map[rune]bool{}
	for _, r := range code {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("character %q not in alphabet", r)
		}
		if seen[r] {
			t.Errorf("character %q repeated; sampling must be without replacement", r)
		}
		seen[r] = true
	}
}

func TestGenerateCode_WholeAlphabet(t *testing.T) {
	code, err := GenerateCode("abc", 3)
	if err != nil {
		t.Fatalf("failed to generate code: %v", err)
	}
	if len(code) != 3 {
		t.Errorf("expected the whole alphabet, got %q", code)
	}
}

func TestGenerateCode_LengthOutOfRange(t *testing.T) {
	if _, err := GenerateCode("abc", 4); err == nil {
		t.Errorf("expected error when length exceeds alphabet size")
	}
	if _, err := GenerateCode("abc", 0); err == nil {
		t.Errorf("expected error for zero length")
	}
}

func TestGenerateCode_Varies(t *testing.T) {
	alphabet := "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	first, err := GenerateCode(alphabet, 6)
	if err != nil {
		t.Fatalf("failed to generate code: %v", err)
	}
	same := 0
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(alphabet, 6)
		if err != nil {
			t.Fatalf("failed to generate code: %v", err)
		}
		if code == first {
			same++
		}
	}
	if same == 20 {
		t.Errorf("generator returned the same code 21 times in a row")
	}
}
