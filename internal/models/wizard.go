package models

import "time"

// WizardStep is a state of the registration wizard.
type WizardStep int

// Wizard states, in order.
const (
	StepConfirmBatch    WizardStep = 1
	StepPersonalDetails WizardStep = 2
	StepPayment         WizardStep = 3
	StepSuccess         WizardStep = 4
)

func (s WizardStep) String() string {
	switch s {
	case StepConfirmBatch:
		return "confirm_batch"
	case StepPersonalDetails:
		return "personal_details"
	case StepPayment:
		return "payment"
	case StepSuccess:
		return "success"
	}
	return "unknown"
}

// RegistrationForm holds the values entered in the personal details step.
type RegistrationForm struct {
	Name          string        `json:"name" validate:"required,min=2,max=50"`
	Email         string        `json:"email" validate:"required,email"`
	Phone         string        `json:"phone" validate:"required,digits10"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=upi card"`
}

// Wizard is one in-progress registration attempt. It is never stored with
// student data and expires with its session.
type Wizard struct {
	ID         string              `json:"id"`
	Step       WizardStep          `json:"step"`
	StepName   string              `json:"step_name"`
	Batch      BatchWithEnrollment `json:"batch"`
	Form       RegistrationForm    `json:"form"`
	Submitting bool                `json:"submitting"`
	StudentID  string              `json:"student_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Terminal reports whether the wizard has reached its final state.
func (w Wizard) Terminal() bool {
	return w.Step == StepSuccess
}
