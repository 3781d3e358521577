// Package errors defines the domain error taxonomy of the credit ledger.
// Handlers and repositories surface these kinds; only the HTTP adapter
// maps them to status codes.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger taxonomy.
var (
	// Lookup failures.
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrCreditTypeNotFound  = errors.New("credit type not found")
	ErrBalanceNotFound     = errors.New("balance not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrHoldNotFound        = errors.New("hold transaction not found")

	// Hold lifecycle violations.
	ErrHoldNotHeld       = errors.New("hold transaction is not in held state")
	ErrHoldAmountExceeds = errors.New("debit amount exceeds hold amount")

	// Balance violations.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Idempotency and coordination.
	ErrDuplicateTransaction = errors.New("duplicate transaction external id")
	ErrLockBusy             = errors.New("balance lock acquisition timed out")

	// Referential integrity on the admin surface.
	ErrWalletHasBalances     = errors.New("wallet still has balances")
	ErrCreditTypeInUse       = errors.New("credit type is referenced by transactions")
	ErrCreditTypeNameTaken   = errors.New("credit type name already exists")
	ErrTransactionNotPending = errors.New("transaction is not pending")
	ErrTransactionTerminal   = errors.New("transaction is in a terminal state")
	ErrHoldStatusTerminal    = errors.New("hold status is terminal")
	ErrWalletInactive        = errors.New("wallet is inactive")
)

// DomainError wraps an error with a machine-readable code and message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// ValidationError reports a field-level input problem. These map to 422.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(e))
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Classification helpers.

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrCreditTypeNotFound) ||
		errors.Is(err, ErrBalanceNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrHoldNotFound)
}

// IsInsufficient reports whether err is a payment-required kind
// (insufficient balance or hold amount exceeded).
func IsInsufficient(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrHoldAmountExceeds)
}

// IsConflict reports whether err is a duplicate external id, a taken
// credit type name or a lock acquisition timeout.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrCreditTypeNameTaken) ||
		errors.Is(err, ErrLockBusy)
}

// IsInvalidState reports whether err is a hold/transaction state
// violation (bad request rather than not found).
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrHoldNotHeld) ||
		errors.Is(err, ErrTransactionNotPending) ||
		errors.Is(err, ErrTransactionTerminal) ||
		errors.Is(err, ErrHoldStatusTerminal) ||
		errors.Is(err, ErrWalletHasBalances) ||
		errors.Is(err, ErrCreditTypeInUse) ||
		errors.Is(err, ErrWalletInactive)
}

// IsValidation reports whether err is a field validation error.
func IsValidation(err error) bool {
	var single ValidationError
	var many ValidationErrors
	return errors.As(err, &single) || errors.As(err, &many)
}
