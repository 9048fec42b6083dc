package handlers

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^POD-\d{8}-\d{6}$`)
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		number := generateOrderNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected order number format: %s", number)
		}
		seen[number] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected random suffixes, all 20 numbers were identical")
	}

	number := generateOrderNumber()
	wantDate := time.Now().UTC().Format("20060102")
	if number[4:12] != wantDate {
		t.Fatalf("expected date segment %s, got %s", wantDate, number[4:12])
	}
}
