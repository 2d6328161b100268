package errors

import (
	"errors"
	"fmt"
)

// Scope identifies how far a failure reaches. A run-scoped error aborts
// the whole sync cycle, an account-scoped error aborts one account, an
// item-scoped error skips one media item, an asset-scoped error skips a
// single file of an item.
type Scope string

const (
	ScopeRun     Scope = "run"
	ScopeAccount Scope = "account"
	ScopeItem    Scope = "item"
	ScopeAsset   Scope = "asset"
)

// Error carries the failure scope alongside the wrapped cause so the
// orchestrator can classify errors at the account boundary.
type Error struct {
	Scope Scope
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Scope, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Run wraps err as fatal to the entire sync cycle.
func Run(op string, err error) error {
	return &Error{Scope: ScopeRun, Op: op, Err: err}
}

// Account wraps err as fatal to a single account.
func Account(op string, err error) error {
	return &Error{Scope: ScopeAccount, Op: op, Err: err}
}

// Item wraps err as fatal to a single media item.
func Item(op string, err error) error {
	return &Error{Scope: ScopeItem, Op: op, Err: err}
}

// Asset wraps err as fatal to a single downloaded file.
func Asset(op string, err error) error {
	return &Error{Scope: ScopeAsset, Op: op, Err: err}
}

// ScopeOf returns the scope of err, defaulting to ScopeAccount for
// unclassified errors so an unknown failure never aborts the whole run.
func ScopeOf(err error) Scope {
	var e *Error
	if errors.As(err, &e) {
		return e.Scope
	}
	return ScopeAccount
}

// IsScope reports whether err is classified with the given scope.
func IsScope(err error, scope Scope) bool {
	return err != nil && ScopeOf(err) == scope
}
