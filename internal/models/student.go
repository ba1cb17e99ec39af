package models

import "time"

// PaymentMethod is how a student paid for a batch.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// Payment status and student status values written on registration.
const (
	PaymentStatusCompleted = "completed"
	StudentStatusActive    = "active"
	ReferralDirect         = "direct"
)

// Student is a registration record, created once at the end of a successful registration.
type Student struct {
	ID               string        `db:"id" json:"id"`
	Name             string        `db:"name" json:"name"`
	Email            string        `db:"email" json:"email"`
	Phone            string        `db:"phone" json:"phone"`
	BatchType        BatchType     `db:"batch_type" json:"batch_type"`
	PaymentMethod    PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus    string        `db:"payment_status" json:"payment_status"`
	TransactionID    string        `db:"transaction_id" json:"transaction_id,omitempty"`
	ReferralSource   string        `db:"referral_source" json:"referral_source,omitempty"`
	Status           string        `db:"status" json:"status"`
	RegistrationDate time.Time     `db:"registration_date" json:"registration_date"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	BatchType BatchType
	Page      int
	PageSize  int
}

// Normalize applies paging defaults.
func (f StudentFilter) Normalize() StudentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return f
}

// MissingFields lists required attributes that are empty.
func (s *Student) MissingFields() []string {
	var missing []string
	if s.Name == "" {
		missing = append(missing, "name")
	}
	if s.Email == "" {
		missing = append(missing, "email")
	}
	if s.Phone == "" {
		missing = append(missing, "phone")
	}
	if s.BatchType == "" {
		missing = append(missing, "batch_type")
	}
	if s.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	return missing
}
