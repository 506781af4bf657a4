package horosafe

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://generativelanguage.googleapis.com", false},
		{"http://localhost:8000", false},
		{"http://127.0.0.1:11434/", false},
		{"ftp://evil.com/data", true},
		{"javascript:alert(1)", true},
		{"https://", true},
		{"::not a url", true},
	}
	for _, tt := range tests {
		err := ValidateEndpoint(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEndpoint(%q) error=%v, wantErr=%v", tt.url, err, tt.wantErr)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)

	got, err := LimitedReadAll(bytes.NewReader(data), 100)
	if err != nil {
		t.Fatalf("at limit: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("got %d bytes", len(got))
	}

	if _, err := LimitedReadAll(bytes.NewReader(data), 99); err == nil {
		t.Fatal("expected error over limit")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("abcdefghij", 4); got != "abcd..." {
		t.Errorf("Truncate = %q", got)
	}
	// "é" is two bytes; cutting inside it must back off to the rune start.
	got := Truncate("aé", 2)
	if !strings.HasPrefix(got, "a") || strings.ContainsRune(got, '�') || got != "a..." {
		t.Errorf("Truncate split a rune: %q", got)
	}
}
