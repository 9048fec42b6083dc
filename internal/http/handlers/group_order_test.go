package handlers

import (
	"testing"
	"time"
)

func TestGroupOrderOpen(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	cases := []struct {
		name         string
		deliveryDate string
		expected     bool
	}{
		{name: "today is still open", deliveryDate: today, expected: true},
		{name: "future date is open", deliveryDate: tomorrow, expected: true},
		{name: "past date is closed", deliveryDate: yesterday, expected: false},
		{name: "unparsable date stays open", deliveryDate: "soonish", expected: true},
		{name: "empty date stays open", deliveryDate: "", expected: true},
		{name: "whitespace around date", deliveryDate: "  " + tomorrow + "  ", expected: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := groupOrderOpen(tc.deliveryDate); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
