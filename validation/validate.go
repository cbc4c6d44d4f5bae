// Package validation checks payment submissions against the field-format
// contract a record must satisfy before it can be stored.
//
// Validate is a pure function: it performs no I/O and holds no state, so it is
// safe to call from any number of goroutines.
package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/arkantrust/payment-api/backend/models"
)

// Kind tags the way a field failed its rule.
type Kind string

const (
	// Required means the value is missing, empty or blank.
	Required Kind = "Required"
	// FormatMismatch means the value is present but has the wrong shape.
	FormatMismatch Kind = "FormatMismatch"
	// OutOfRange means the value has the right shape but is not acceptable.
	OutOfRange Kind = "OutOfRange"
)

// Field names as they appear on the wire.
const (
	FieldName             = "name"
	FieldAddress          = "address"
	FieldCreditCardNumber = "creditCardNumber"
	FieldExpiry           = "expiry"
	FieldCVV              = "cvv"
	FieldAmount           = "amount"
)

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
	expiryPattern     = regexp.MustCompile(`^[0-9]{2}/[0-9]{2}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// Validate checks every field of in and returns the validated record.
//
// All rules are evaluated; on failure the returned error is a Violations value
// holding one entry per failing field, in wire order. Field values are carried
// over unchanged, including surrounding whitespace.
func Validate(in models.PaymentInput) (models.Payment, error) {
	var vs Violations

	if strings.TrimSpace(in.Name) == "" {
		vs.add(FieldName, Required, "must not be blank")
	}
	if strings.TrimSpace(in.Address) == "" {
		vs.add(FieldAddress, Required, "must not be blank")
	}
	vs.match(FieldCreditCardNumber, in.CreditCardNumber, cardNumberPattern, "Credit card number must be 16 digits")
	vs.match(FieldExpiry, in.Expiry, expiryPattern, "Expiry must be in MM/YY format")
	vs.match(FieldCVV, in.CVV, cvvPattern, "CVV must be 3 or 4 digits")

	switch {
	case in.Amount == nil:
		vs.add(FieldAmount, Required, "must not be null")
	case !(*in.Amount > 0) || math.IsInf(*in.Amount, 1):
		// !(x > 0) also rejects NaN.
		vs.add(FieldAmount, OutOfRange, "Amount must be greater than 0")
	}

	if len(vs) > 0 {
		return models.Payment{}, vs
	}

	return models.Payment{
		Name:             in.Name,
		Address:          in.Address,
		CreditCardNumber: in.CreditCardNumber,
		Expiry:           in.Expiry,
		CVV:              in.CVV,
		Amount:           *in.Amount,
	}, nil
}

// match records Required for an empty value and FormatMismatch for a value
// that does not match re.
func (vs *Violations) match(field, value string, re *regexp.Regexp, msg string) {
	if value == "" {
		vs.add(field, Required, "must not be blank")
		return
	}
	if !re.MatchString(value) {
		vs.add(field, FormatMismatch, msg)
	}
}
