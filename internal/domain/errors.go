package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for store lookups and version insertion races. Callers
// match with errors.Is.
var (
	// ErrNotFound indicates the requested report/version/tenant combination
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation on a version insert.
	// Callers may re-read the latest version and retry with version_number+1.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCancelled indicates cooperative cancellation fired before completion.
	ErrCancelled = errors.New("cancelled")
)

// Severity levels for validation issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// InvalidInputError reports a structurally invalid TaxReturn field, located
// by a dotted path such as "income.w2_forms[0].wages".
type InvalidInputError struct {
	Path    string
	Code    string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at %s [%s]: %s", e.Path, e.Code, e.Message)
}

// ValidationIssue is a single fired validation rule.
type ValidationIssue struct {
	RuleID   string `json:"rule_id"`
	Path     string `json:"path"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ValidationFailedError carries every error-severity issue fired by the
// validation service. Raised only in strict mode; lenient mode accumulates
// the same issues on the result instead.
type ValidationFailedError struct {
	Issues []ValidationIssue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(e.Issues))
}

// ComputationError wraps an unexpected numeric condition inside a form
// computation. Never retried.
type ComputationError struct {
	Form string
	Op   string
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in %s (%s): %v", e.Form, e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// IntegrityViolationError reports a broken version chain: hash mismatch,
// version_number gap, or inconsistent previous_version_id linkage.
type IntegrityViolationError struct {
	ReportID string
	TenantID string
	Problems []string
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("integrity violation for report %s (tenant %s): %d problem(s)", e.ReportID, e.TenantID, len(e.Problems))
}

// ExternalUnavailableError marks a failure of an external AI/knowledge or
// storage call that is safe to retry (timeout, 5xx, connection reset).
type ExternalUnavailableError struct {
	Op  string
	Err error
}

func (e *ExternalUnavailableError) Error() string {
	return fmt.Sprintf("external service unavailable during %s: %v", e.Op, e.Err)
}

func (e *ExternalUnavailableError) Unwrap() error { return e.Err }

// CircuitOpenError is returned while a named circuit breaker is open.
type CircuitOpenError struct {
	Name          string
	TimeRemaining time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit %q is open, retry in %s", e.Name, e.TimeRemaining)
}

// RetryExhaustedError wraps the last underlying cause after the retry engine
// gave up.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }
