package checkout

import "testing"

func TestActiveAdvancesToFirstUnconfirmed(t *testing.T) {
	cases := []struct {
		name     string
		state    State
		expected Step
	}{
		{"nothing confirmed", State{}, StepDateTime},
		{"datetime done", State{DateTimeConfirmed: true}, StepAddress},
		{"datetime and address done", State{DateTimeConfirmed: true, AddressConfirmed: true}, StepCustomer},
		{"all done", State{DateTimeConfirmed: true, AddressConfirmed: true, CustomerConfirmed: true}, StepPayment},
		{"address skipped", State{DateTimeConfirmed: true, CustomerConfirmed: true}, StepAddress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Active(); got != tc.expected {
				t.Fatalf("expected active step %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestConfirmLandsOnPaymentWhenOthersDone(t *testing.T) {
	s := State{}
	s = s.Confirm(StepDateTime)
	s = s.Confirm(StepAddress)
	s = s.Confirm(StepCustomer)

	if !s.ReadyForPayment() {
		t.Fatalf("expected ready for payment")
	}
	if s.Active() != StepPayment {
		t.Fatalf("expected payment step, got %s", s.Active())
	}
}

func TestEditReopensSingleStep(t *testing.T) {
	s := State{DateTimeConfirmed: true, AddressConfirmed: true, CustomerConfirmed: true}
	s = s.Edit(StepAddress)

	if s.AddressConfirmed {
		t.Fatalf("expected address step reopened")
	}
	if !s.DateTimeConfirmed || !s.CustomerConfirmed {
		t.Fatalf("editing one step must not clear the others")
	}
	if s.Active() != StepAddress {
		t.Fatalf("expected active step address, got %s", s.Active())
	}
}

func TestParseStep(t *testing.T) {
	if step, err := ParseStep(" DateTime "); err != nil || step != StepDateTime {
		t.Fatalf("expected datetime, got %v %v", step, err)
	}
	if _, err := ParseStep("review"); err == nil {
		t.Fatalf("expected error for unknown step")
	}
}
