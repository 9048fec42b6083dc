package checkout

import (
	"strings"
	"time"
)

// LastOrderTTL is how long a completed order stays eligible for the
// "add to previous order" flow.
const LastOrderTTL = 30 * 24 * time.Hour

// Changes reports how the current selection differs from the previous order.
// An empty Fields list with HasChanges=false means the delivery is an exact
// match and qualifies for free bundled delivery.
type Changes struct {
	HasChanges bool     `json:"hasChanges"`
	Fields     []string `json:"fields,omitempty"`
}

func normalize(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// Diff compares the current delivery selection against the stored previous
// order. Only date, time and address participate; instructions and contact
// details never break bundling.
func Diff(current DeliveryInfo, last LastOrderInfo) Changes {
	var changed []string
	if normalize(current.Date) != normalize(last.DeliveryDate) {
		changed = append(changed, "date")
	}
	if normalize(current.TimeSlot) != normalize(last.DeliveryTime) {
		changed = append(changed, "time")
	}
	if normalize(current.Address) != normalize(last.Address) {
		changed = append(changed, "address")
	}
	return Changes{HasChanges: len(changed) > 0, Fields: changed}
}

// Usable reports whether the stored previous order may still be offered for
// bundling: inside its 30-day window and with a delivery moment that has not
// already passed.
func (l LastOrderInfo) Usable(now time.Time) bool {
	if l.OrderNumber == "" {
		return false
	}
	if !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt) {
		return false
	}
	deliveryEnd, ok := parseDeliveryEnd(l.DeliveryDate, l.DeliveryTime)
	if !ok {
		return false
	}
	return now.Before(deliveryEnd)
}

// parseDeliveryEnd resolves the end of the delivery window. Time slots are
// stored as ranges ("5:00 PM - 7:00 PM" or "17:00-19:00"); when the slot
// cannot be parsed the window closes at end of day.
func parseDeliveryEnd(date string, slot string) (time.Time, bool) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, false
	}

	endOfDay := day.Add(24*time.Hour - time.Second)

	parts := strings.Split(slot, "-")
	endPart := strings.TrimSpace(parts[len(parts)-1])
	if endPart == "" {
		return endOfDay, true
	}

	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if parsed, err := time.Parse(layout, strings.ToUpper(endPart)); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, time.Local), true
		}
	}
	return endOfDay, true
}
