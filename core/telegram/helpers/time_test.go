package helpers

import (
	"testing"
	"time"
)

func TestParseFlexibleDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)},
		{"2026-1-5", time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)},
		{"2026-01-15 14:30", time.Date(2026, 1, 15, 14, 30, 0, 0, time.Local)},
		{"15.01.2026", time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)},
		{"  2026-01-15  ", time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)},
	}
	for _, tc := range cases {
		got, ok := ParseFlexibleDate(tc.in)
		if !ok {
			t.Errorf("ParseFlexibleDate(%q) failed", tc.in)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseFlexibleDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "15/01/2026", "2026-13-45"} {
		if _, ok := ParseFlexibleDate(in); ok {
			t.Errorf("ParseFlexibleDate(%q) accepted", in)
		}
	}
}

func TestParseFlexibleDateUnix(t *testing.T) {
	got, ok := ParseFlexibleDateUnix("2026-01-15 14:30")
	if !ok {
		t.Fatal("parse failed")
	}
	want := time.Date(2026, 1, 15, 14, 30, 0, 0, time.Local).Unix()
	if got != want {
		t.Errorf("unix = %d, want %d", got, want)
	}
	if _, ok := ParseFlexibleDateUnix("nope"); ok {
		t.Error("garbage accepted")
	}
}
