package helper

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LeBron James", "lebron james"},
		{"J. Smith", "j smith"},
		{"  multiple   spaces  ", "multiple spaces"},
		{"BREAKING: trade is OFFICIAL!!!", "breaking trade is official"},
		{"a,b.c", "a b c"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	first, last, ok := SplitName("john james smith")
	if !ok || first != "john" || last != "smith" {
		t.Fatalf("SplitName: got (%q, %q, %t)", first, last, ok)
	}
	if _, _, ok := SplitName("madonna"); ok {
		t.Fatalf("SplitName: одиночное имя не должно сплититься")
	}
	if _, _, ok := SplitName(""); ok {
		t.Fatalf("SplitName: пустая строка не должна сплититься")
	}
}

func TestLegKey(t *testing.T) {
	if key := LegKey("NBATRADE-LBJ-LAL", "no"); key != "NBATRADE-LBJ-LAL:no" {
		t.Fatalf("LegKey = %q", key)
	}
}

func TestBackoff(t *testing.T) {
	start := time.Second
	capD := 8 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 8 * time.Second}, // потолок держится
	}
	for _, c := range cases {
		if got := Backoff(c.attempt, start, capD); got != c.want {
			t.Fatalf("Backoff(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}
