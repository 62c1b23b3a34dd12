package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFarmerNotFound        = errors.New("farmer_not_found")
	ErrProductNotFound       = errors.New("product_not_found")
	ErrBillNotFound          = errors.New("bill_not_found")
	ErrReturnNotFound        = errors.New("return_not_found")
	ErrRegisterEntryNotFound = errors.New("stock_register_entry_not_found")

	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidSize        = errors.New("invalid_size")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidPaymentMode = errors.New("invalid_payment_mode")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrMissingFarmer      = errors.New("missing_farmer")
	ErrEmptyItems         = errors.New("empty_items")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrOverpayment        = errors.New("payment_exceeds_outstanding")
	ErrNumberIssued       = errors.New("number_already_issued")
)

// ValidationError ties a sentinel error to the offending field.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(field string, err error) error {
	return &ValidationError{Err: err, Field: field}
}

// IsValidation reports whether err is a caller-correctable input error.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
