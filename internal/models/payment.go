package models

// PaymentRequest is the charge request handed to a payment gateway.
type PaymentRequest struct {
	Amount      string        `json:"amount"`
	Currency    string        `json:"currency"`
	Description string        `json:"description"`
	Email       string        `json:"email"`
	Method      PaymentMethod `json:"method"`
}

// PaymentResponse is the gateway outcome.
type PaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}
