// Package lattice implements the four-valued truth algebra used to resolve
// propositions: T (true), F (false), B (both, a localized contradiction) and
// N (neither, undetermined).
package lattice

import (
	"errors"
	"fmt"
)

// Value is one of the four truth values. The zero value is N.
type Value uint8

const (
	N Value = iota // neither / undetermined
	T              // true
	F              // false
	B              // both / contradictory
)

// DefaultEpsilon is the threshold above which an evidence sum counts.
const DefaultEpsilon = 1e-9

// ErrInvalidValue is returned when parsing text that names no truth value
var ErrInvalidValue = errors.New("invalid truth value")

// Values lists all four truth values in a stable order
func Values() []Value {
	return []Value{T, F, B, N}
}

// Valid reports whether v is one of the four truth values
func (v Value) Valid() bool {
	return v <= B
}

func (v Value) String() string {
	switch v {
	case T:
		return "T"
	case F:
		return "F"
	case B:
		return "B"
	case N:
		return "N"
	default:
		return fmt.Sprintf("Value(%d)", uint8(v))
	}
}

// MarshalText encodes the value as its one-letter form
func (v Value) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValue, uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText decodes a one-letter form or a label
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse accepts either the one-letter form ("T") or the label ("true")
func Parse(s string) (Value, error) {
	switch s {
	case "T", "true":
		return T, nil
	case "F", "false":
		return F, nil
	case "B", "both/contradictory":
		return B, nil
	case "N", "undetermined":
		return N, nil
	}
	return N, fmt.Errorf("%w: %q", ErrInvalidValue, s)
}

// Negate swaps T and F and leaves B and N fixed
func Negate(x Value) Value {
	switch x {
	case T:
		return F
	case F:
		return T
	default:
		return x
	}
}

// Join is the information-order union (OR). Out-of-range input yields B.
func Join(a, b Value) Value {
	if !a.Valid() || !b.Valid() {
		return B
	}
	if a == b {
		return a
	}
	switch {
	case a == B || b == B:
		return B
	case a == N:
		return b
	case b == N:
		return a
	default:
		// remaining pair is {T, F}
		return B
	}
}

// Meet is the conservative intersection (AND). Out-of-range input yields N.
func Meet(a, b Value) Value {
	if !a.Valid() || !b.Valid() {
		return N
	}
	if a == b {
		return a
	}
	switch {
	case a == N || b == N:
		return N
	case a == B:
		return b
	case b == B:
		return a
	default:
		// remaining pair is {T, F}
		return N
	}
}

// FromEvidence classifies aggregated support and counter weight.
// A sum counts only when it is strictly greater than eps.
func FromEvidence(support, counter, eps float64) Value {
	s := support > eps
	c := counter > eps
	switch {
	case s && c:
		return B
	case s:
		return T
	case c:
		return F
	default:
		return N
	}
}

// Label returns the human readable form used in outbound prompts
func Label(v Value) string {
	switch v {
	case T:
		return "true"
	case F:
		return "false"
	case B:
		return "both/contradictory"
	default:
		return "undetermined"
	}
}
