package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestName_TrimsAndAccepts(t *testing.T) {
	cases := map[string]string{
		"  Juan Pérez  ":    "Juan Pérez",
		"María José Gómez":  "María José Gómez",
		"O'Brien":           "O'Brien",
		"Jean-Luc":          "Jean-Luc",
		"Sra. Ñoño Güemes":  "Sra. Ñoño Güemes",
	}
	for in, want := range cases {
		got, err := Name(in)
		if err != nil {
			t.Errorf("Name(%q) error = %v, want nil", in, err)
			continue
		}
		if got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName_Rejects(t *testing.T) {
	cases := []string{
		"Juan<script>alert(1)</script>",
		"",
		"   ",
		"Juan; DROP TABLE clients",
		"a" + strings.Repeat("b", MaxNameLen),
		"Juan123",
	}
	for _, in := range cases {
		if _, err := Name(in); err == nil {
			t.Errorf("Name(%q) error = nil, want error", in)
		}
	}
}

func TestAddress(t *testing.T) {
	got, err := Address("  Calle 45 #12-30, Apto 201  ")
	if err != nil {
		t.Fatalf("Address error = %v, want nil", err)
	}
	if got != "Calle 45 #12-30, Apto 201" {
		t.Errorf("Address = %q", got)
	}

	for _, in := range []string{"", "<img src=x>", strings.Repeat("c", MaxAddressLen+1)} {
		if _, err := Address(in); err == nil {
			t.Errorf("Address(%q) error = nil, want error", in)
		}
	}
}

func TestPhone(t *testing.T) {
	valid := []string{"3001234567", "+57 300 123-4567", "(601) 555-1234"}
	for _, in := range valid {
		if _, err := Phone(in); err != nil {
			t.Errorf("Phone(%q) error = %v, want nil", in, err)
		}
	}
	invalid := []string{"", "abc", "300.123", "+57;300"}
	for _, in := range invalid {
		if _, err := Phone(in); err == nil {
			t.Errorf("Phone(%q) error = nil, want error", in)
		}
	}
}

func TestAmount(t *testing.T) {
	valid := map[string]string{
		"1000":     "1000",
		"45.50":    "45.5",
		"0.01":     "0.01",
		" 300.5 ":  "300.5",
	}
	for in, want := range valid {
		got, err := Amount(in)
		if err != nil {
			t.Errorf("Amount(%q) error = %v, want nil", in, err)
			continue
		}
		if got.String() != want {
			t.Errorf("Amount(%q) = %s, want %s", in, got, want)
		}
	}

	invalid := []string{"", "0", "-5", "10.123", "1,000", "abc", "10."}
	for _, in := range invalid {
		if _, err := Amount(in); err == nil {
			t.Errorf("Amount(%q) error = nil, want error", in)
		}
	}
}

func TestText(t *testing.T) {
	if got := Text("  hola\x00mundo  ", 0); got != "holamundo" {
		t.Errorf("Text strips control chars: got %q", got)
	}
	if got := Text("abcdef", 3); got != "abc" {
		t.Errorf("Text caps length: got %q", got)
	}
	if got := Text("line1\nline2", 0); got != "line1\nline2" {
		t.Errorf("Text keeps newlines: got %q", got)
	}
}

func TestText_CapLandsOnRuneBoundary(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"aé", 2, "a"},       // é is two bytes, cap splits it
		{"aé", 3, "aé"},      // cap lands exactly after the rune
		{"ñño", 3, "ñ"},      // two-byte runes back to back
		{"día", 4, "día"},    // fits
		{"€€", 4, "€"},       // three-byte rune split mid-sequence
	}
	for _, c := range cases {
		got := Text(c.in, c.maxLen)
		if got != c.want {
			t.Errorf("Text(%q, %d) = %q, want %q", c.in, c.maxLen, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Text(%q, %d) = %q is not valid UTF-8", c.in, c.maxLen, got)
		}
	}
}
