package exchange

import "testing"

func TestDestinationFromTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Will John Smith be traded to the Los Angeles Lakers?", "Los Angeles Lakers"},
		{"Will John Smith be traded to Miami?", "Miami"},
		{"Will John Smith be traded this season?", ""},
		{"Super Bowl ad in Q1", ""},
	}
	for _, c := range cases {
		if got := destinationFromTitle(c.title); got != c.want {
			t.Fatalf("destinationFromTitle(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}
