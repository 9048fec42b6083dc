package checkout

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9().\-\s]{6,18}$`)
)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidateDelivery gates the datetime step.
func ValidateDelivery(info DeliveryInfo) error {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(info.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(info.TimeSlot) == "" {
		missing = append(missing, "time slot")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// ValidateAddress gates the address step. Every missing field is named so
// the storefront can show one actionable message.
func ValidateAddress(info AddressInfo) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(info.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(info.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(info.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(info.ZipCode) == "" {
		missing = append(missing, "zip code")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// ValidateCustomer gates the contact step.
func ValidateCustomer(info CustomerInfo) error {
	if strings.TrimSpace(info.FirstName) == "" || strings.TrimSpace(info.LastName) == "" {
		return errors.New("first and last name are required")
	}
	if !ValidEmail(info.Email) {
		return errors.New("a valid email address is required")
	}
	if !ValidPhone(info.Phone) {
		return errors.New("a valid phone number is required")
	}
	return nil
}

// FormatAddress renders an AddressInfo the way it is stored on orders and
// compared during previous-order diffing.
func FormatAddress(info AddressInfo) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{info.Street, info.City, info.State, info.ZipCode} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}
