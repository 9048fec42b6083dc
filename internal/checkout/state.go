// Package checkout models the multi-step checkout flow: an explicit step
// type with transition functions, field validation per step, and diffing
// against the customer's previous order when bundling.
package checkout

import (
	"errors"
	"strings"
)

type Step string

const (
	StepDateTime Step = "datetime"
	StepAddress  Step = "address"
	StepCustomer Step = "customer"
	StepPayment  Step = "payment"
)

// stepOrder is the canonical progression. Payment is never "confirmed";
// reaching it means the three preceding steps are.
var stepOrder = []Step{StepDateTime, StepAddress, StepCustomer}

var ErrUnknownStep = errors.New("unknown checkout step")

func ParseStep(value string) (Step, error) {
	switch Step(strings.ToLower(strings.TrimSpace(value))) {
	case StepDateTime:
		return StepDateTime, nil
	case StepAddress:
		return StepAddress, nil
	case StepCustomer:
		return StepCustomer, nil
	case StepPayment:
		return StepPayment, nil
	default:
		return "", ErrUnknownStep
	}
}

// State tracks which pre-payment steps are confirmed. The active step is
// always derived, never stored, so the flags cannot drift from it.
type State struct {
	DateTimeConfirmed bool `json:"datetimeConfirmed"`
	AddressConfirmed  bool `json:"addressConfirmed"`
	CustomerConfirmed bool `json:"customerConfirmed"`
}

func (s State) Confirmed(step Step) bool {
	switch step {
	case StepDateTime:
		return s.DateTimeConfirmed
	case StepAddress:
		return s.AddressConfirmed
	case StepCustomer:
		return s.CustomerConfirmed
	default:
		return false
	}
}

// Confirm marks a step complete and returns the new state. The caller is
// expected to have validated the step's fields first.
func (s State) Confirm(step Step) State {
	switch step {
	case StepDateTime:
		s.DateTimeConfirmed = true
	case StepAddress:
		s.AddressConfirmed = true
	case StepCustomer:
		s.CustomerConfirmed = true
	}
	return s
}

// Edit re-opens a single confirmed step without touching the others.
func (s State) Edit(step Step) State {
	switch step {
	case StepDateTime:
		s.DateTimeConfirmed = false
	case StepAddress:
		s.AddressConfirmed = false
	case StepCustomer:
		s.CustomerConfirmed = false
	}
	return s
}

// Active returns the first unconfirmed step in order, or payment when all
// three pre-payment steps are confirmed.
func (s State) Active() Step {
	for _, step := range stepOrder {
		if !s.Confirmed(step) {
			return step
		}
	}
	return StepPayment
}

func (s State) ReadyForPayment() bool {
	return s.Active() == StepPayment
}
