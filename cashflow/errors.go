/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All engine error types in one place. Every fatal condition identifies the
  failing treaty/month/check so a run can be diagnosed from the message
  alone. There is no partial-output mode: any error from the engine means
  the run produced nothing.

ERROR CATEGORIES:
  1. Reference errors  - A treaty is unusable (no development factors,
                         zero-length window, inconsistent inherited reserve)
  2. Reconciliation    - A sum-preservation invariant failed beyond tolerance
  3. Grid errors       - Internal lattice inconsistencies

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, cashflow.ErrReconciliation) {
        // inputs are inconsistent, rerun with corrected data
    }
*/
package cashflow

import (
	"errors"
	"fmt"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrReconciliation is returned when any sum-preservation check
	// deviates beyond tolerance. Fatal and unrecoverable within a run.
	ErrReconciliation = errors.New("reconciliation check failed")

	// ErrMissingDevelopment is returned when a treaty in the grid has no
	// development-factor rows after cleaning.
	ErrMissingDevelopment = errors.New("no development factors for treaty")

	// ErrInvalidTreaty is returned when a treaty's static attributes make
	// allocation undefined (zero-length window, zero policy length).
	ErrInvalidTreaty = errors.New("invalid treaty attributes")

	// ErrInheritedOnNonLOD is returned when a non-LOD treaty carries a
	// nonzero inherited reserve. This is a data-quality signal and must be
	// surfaced, not silently zeroed.
	ErrInheritedOnNonLOD = errors.New("inherited reserve on non-LOD treaty")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ReconciliationError reports the specific check that failed.
type ReconciliationError struct {
	Check Check
}

func (e *ReconciliationError) Error() string {
	scope := "book"
	if e.Check.Treaty != "" {
		scope = "treaty " + string(e.Check.Treaty)
	}
	return fmt.Sprintf("reconciliation %q failed for %s: expected %s, got %s",
		e.Check.Name, scope, e.Check.Expected, e.Check.Actual)
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }

// MissingDevelopmentError identifies the treaty lacking reference data.
type MissingDevelopmentError struct {
	TreatyID treaty.TreatyID
}

func (e *MissingDevelopmentError) Error() string {
	return fmt.Sprintf("treaty %s has no development factors after cleaning", e.TreatyID)
}

func (e *MissingDevelopmentError) Unwrap() error { return ErrMissingDevelopment }

// InvalidTreatyError identifies a treaty whose attributes fail validation.
type InvalidTreatyError struct {
	TreatyID treaty.TreatyID
	Reason   string
}

func (e *InvalidTreatyError) Error() string {
	return fmt.Sprintf("treaty %s: %s", e.TreatyID, e.Reason)
}

func (e *InvalidTreatyError) Unwrap() error { return ErrInvalidTreaty }

// InheritedOnNonLODError flags the data-quality condition of spec'd
// inherited reserve on a treaty that is not losses-occurring-during.
type InheritedOnNonLODError struct {
	TreatyID treaty.TreatyID
	Amount   string
}

func (e *InheritedOnNonLODError) Error() string {
	return fmt.Sprintf("treaty %s is not LOD but carries inherited reserve %s", e.TreatyID, e.Amount)
}

func (e *InheritedOnNonLODError) Unwrap() error { return ErrInheritedOnNonLOD }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataQuality reports whether the error points at bad reference data
// rather than an engine defect.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrMissingDevelopment) ||
		errors.Is(err, ErrInvalidTreaty) ||
		errors.Is(err, ErrInheritedOnNonLOD)
}
