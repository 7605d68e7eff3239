// Package ledger enforces "sum of child allocations ≤ parent budget" at
// every nesting level of a plan: POA budgets against the project's
// approved budget, task totals against a POA's assigned budget, and
// monthly values against a task's total.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotNumeric indicates the entered amount is not a decimal number.
	ErrNotNumeric = errors.New("amount must be a number")

	// ErrNotPositive indicates a zero or negative amount was entered.
	ErrNotPositive = errors.New("amount must be greater than zero")

	// ErrTooPrecise indicates more than two fractional digits were entered.
	ErrTooPrecise = errors.New("amount must have at most 2 decimal places")
)

// Allocations maps sibling keys (temp ids, codes, month slots) to the
// amounts currently allocated against one shared ceiling.
type Allocations map[string]decimal.Decimal

// ProposedTotal sums all allocation values, optionally excluding one key.
// Excluding the key being edited avoids counting its stale value while
// the user types a replacement. Pass "" to exclude nothing.
func ProposedTotal(allocs Allocations, excluding string) decimal.Decimal {
	total := decimal.Zero
	for key, v := range allocs {
		if excluding != "" && key == excluding {
			continue
		}
		total = total.Add(v)
	}
	return total
}

// WouldOverflow reports whether accepting candidate for candidateKey would
// push the total past the ceiling. A total exactly equal to the ceiling is
// not an overflow.
func WouldOverflow(ceiling decimal.Decimal, allocs Allocations, candidateKey string, candidate decimal.Decimal) bool {
	return ProposedTotal(allocs, candidateKey).Add(candidate).GreaterThan(ceiling)
}

// Remaining returns ceiling minus the sum of all allocations. The result
// may be negative when budget consumed elsewhere already exceeds the
// ceiling; callers must surface that as an error state, never clamp it.
func Remaining(ceiling decimal.Decimal, allocs Allocations) decimal.Decimal {
	return ceiling.Sub(ProposedTotal(allocs, ""))
}

// ParseAmount validates a user-entered budget amount: it must parse as a
// decimal, be strictly positive, and carry at most two fractional digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrTooPrecise
	}
	return d, nil
}

// Envelope is the working record of one ceiling and the allocations made
// against it. It is recomputed reactively: every Set updates the snapshot
// consumers read Remaining from.
type Envelope struct {
	Ceiling decimal.Decimal
	Allocs  Allocations
}

// NewEnvelope creates an envelope with no allocations.
func NewEnvelope(ceiling decimal.Decimal) *Envelope {
	return &Envelope{Ceiling: ceiling, Allocs: make(Allocations)}
}

// Set records or replaces the allocation for key.
func (e *Envelope) Set(key string, v decimal.Decimal) {
	e.Allocs[key] = v
}

// Unset removes the allocation for key.
func (e *Envelope) Unset(key string) {
	delete(e.Allocs, key)
}

// WouldOverflow reports whether setting key to candidate would exceed the
// envelope's ceiling.
func (e *Envelope) WouldOverflow(key string, candidate decimal.Decimal) bool {
	return WouldOverflow(e.Ceiling, e.Allocs, key, candidate)
}

// Remaining returns the envelope's unallocated balance; may be negative.
func (e *Envelope) Remaining() decimal.Decimal {
	return Remaining(e.Ceiling, e.Allocs)
}
