package checkout

import (
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"sam@example.com", true},
		{"sam+tag@sub.example.co", true},
		{"sam@example", false},
		{"sam example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidEmail(tc.email); got != tc.ok {
			t.Fatalf("ValidEmail(%q) = %v, expected %v", tc.email, got, tc.ok)
		}
	}
}

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"(512) 555-0134", true},
		{"+1 512 555 0134", true},
		{"5125550134", true},
		{"555", false},
		{"call me", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPhone(tc.phone); got != tc.ok {
			t.Fatalf("ValidPhone(%q) = %v, expected %v", tc.phone, got, tc.ok)
		}
	}
}

func TestValidateAddressEnumeratesMissingFields(t *testing.T) {
	err := ValidateAddress(AddressInfo{City: "Austin"})
	if err == nil {
		t.Fatalf("expected error for missing fields")
	}
	msg := err.Error()
	for _, field := range []string{"street", "state", "zip code"} {
		if !strings.Contains(msg, field) {
			t.Fatalf("expected %q in error, got %q", field, msg)
		}
	}
	if strings.Contains(msg, "city") {
		t.Fatalf("city was provided and must not be reported: %q", msg)
	}
}

func TestValidateCustomer(t *testing.T) {
	valid := CustomerInfo{FirstName: "Sam", LastName: "Reyes", Email: "sam@example.com", Phone: "(512) 555-0134"}
	if err := ValidateCustomer(valid); err != nil {
		t.Fatalf("expected valid customer, got %v", err)
	}

	cases := []struct {
		name string
		info CustomerInfo
	}{
		{"missing name", CustomerInfo{Email: "sam@example.com", Phone: "5125550134"}},
		{"bad email", CustomerInfo{FirstName: "Sam", LastName: "Reyes", Email: "nope", Phone: "5125550134"}},
		{"bad phone", CustomerInfo{FirstName: "Sam", LastName: "Reyes", Email: "sam@example.com", Phone: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateCustomer(tc.info); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestFormatAddress(t *testing.T) {
	got := FormatAddress(AddressInfo{Street: "100 Congress Ave", City: "Austin", State: "TX", ZipCode: "78701"})
	want := "100 Congress Ave, Austin, TX, 78701"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
