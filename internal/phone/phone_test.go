package phone

import "testing"

func TestNormalizeCanonicalForms(t *testing.T) {
	// All accepted formats must collapse to the same canonical string.
	inputs := []string{"+989123456789", "989123456789", "09123456789"}
	for _, in := range inputs {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in, err)
		}
		if got != "09123456789" {
			t.Errorf("Normalize(%q) = %q, want 09123456789", in, got)
		}
	}
}

func TestNormalizeToleratesSeparators(t *testing.T) {
	got, err := Normalize(" +98 912 345-6789 ")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "09123456789" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"12345",
		"+19123456789",   // wrong country code
		"0912345678",     // too short
		"091234567890",   // too long
		"+98912345678x",  // non-digit
		"08123456789",    // not a mobile prefix
		"98912345678",    // country form too short
		"+9891234567890", // country form too long
	}
	for _, in := range bad {
		if _, err := Normalize(in); err == nil {
			t.Errorf("Normalize(%q) accepted, want error", in)
		}
	}
}

func TestValidCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{" 123456 ", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{"12 456", false},
	}
	for _, tc := range cases {
		if got := ValidCode(tc.code); got != tc.want {
			t.Errorf("ValidCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
