package checkout

import (
	"testing"
	"time"
)

func sampleLastOrder(deliveryDate string) LastOrderInfo {
	return LastOrderInfo{
		OrderNumber:  "POD-20260110-0042",
		Total:        182.44,
		Address:      "100 Congress Ave, Austin, TX, 78701",
		DeliveryDate: deliveryDate,
		DeliveryTime: "5:00 PM - 7:00 PM",
		ExpiresAt:    time.Now().Add(29 * 24 * time.Hour),
	}
}

func TestDiffExactMatch(t *testing.T) {
	last := sampleLastOrder("2026-09-04")
	current := DeliveryInfo{
		Date:     "2026-09-04",
		TimeSlot: "5:00 pm - 7:00 pm",
		Address:  "100 Congress Ave,  Austin, TX, 78701",
	}

	changes := Diff(current, last)
	if changes.HasChanges {
		t.Fatalf("expected no changes, got %v", changes.Fields)
	}
}

func TestDiffReportsChangedFields(t *testing.T) {
	last := sampleLastOrder("2026-09-04")
	current := DeliveryInfo{
		Date:     "2026-09-05",
		TimeSlot: "5:00 PM - 7:00 PM",
		Address:  "200 Guadalupe St, Austin, TX, 78701",
	}

	changes := Diff(current, last)
	if !changes.HasChanges {
		t.Fatalf("expected changes")
	}
	if len(changes.Fields) != 2 {
		t.Fatalf("expected 2 changed fields, got %v", changes.Fields)
	}
	expect := map[string]bool{"date": true, "address": true}
	for _, field := range changes.Fields {
		if !expect[field] {
			t.Fatalf("unexpected changed field %q", field)
		}
	}
}

func TestUsableRejectsExpired(t *testing.T) {
	last := sampleLastOrder(time.Now().Add(48 * time.Hour).Format("2006-01-02"))
	last.ExpiresAt = time.Now().Add(-time.Hour)

	if last.Usable(time.Now()) {
		t.Fatalf("expired last order must be treated as absent")
	}
}

func TestUsableRejectsPastDelivery(t *testing.T) {
	last := sampleLastOrder(time.Now().Add(-48 * time.Hour).Format("2006-01-02"))

	if last.Usable(time.Now()) {
		t.Fatalf("a delivery window in the past must not offer bundling")
	}
}

func TestUsableAcceptsUpcomingDelivery(t *testing.T) {
	last := sampleLastOrder(time.Now().Add(72 * time.Hour).Format("2006-01-02"))

	if !last.Usable(time.Now()) {
		t.Fatalf("expected upcoming delivery to be usable")
	}
}

func TestUsableRejectsEmptyRecord(t *testing.T) {
	if (LastOrderInfo{}).Usable(time.Now()) {
		t.Fatalf("zero-value record must be unusable")
	}
}
