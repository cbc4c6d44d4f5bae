// Package models defines the core domain types for the payment API.
package models

import "strings"

// PaymentInput is a payment submission as decoded from the request body.
//
// It deliberately has no ID field: identifiers are assigned by the store, so an
// "id" key sent by a client is dropped during decoding.
type PaymentInput struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	CreditCardNumber string `json:"creditCardNumber"`
	Expiry           string `json:"expiry"`
	CVV              string `json:"cvv"`

	// Amount is a pointer so that a missing key can be told apart from 0.
	Amount *float64 `json:"amount"`
}

// Payment is a submitted payment record.
//
// A Payment with ID 0 has passed validation but has not been persisted yet.
// Once stored it is never modified.
//
// CreditCardNumber and CVV are stored and returned in plaintext. This is a
// known gap carried over from the existing API contract.
type Payment struct {
	// ID is assigned by the store on creation and is never reused.
	ID int64 `json:"id"`

	Name             string  `json:"name"`
	Address          string  `json:"address"`
	CreditCardNumber string  `json:"creditCardNumber"`
	Expiry           string  `json:"expiry"`
	CVV              string  `json:"cvv"`
	Amount           float64 `json:"amount"`
}

// MaskedCard returns the card number with every digit except the last four
// replaced by '*'. It is the only form of the card number that may be logged.
func (p Payment) MaskedCard() string {
	n := len(p.CreditCardNumber)
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	return strings.Repeat("*", n-4) + p.CreditCardNumber[n-4:]
}
