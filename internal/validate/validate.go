package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
)

// ErrValidation is the sentinel all rule failures wrap.
var ErrValidation = errors.New("validation failed")

// Rule checks a single field value. Implementations return an error
// wrapping ErrValidation when the value is rejected.
//
// The context is passed through for rules that perform blocking work
// (e.g. remote lookups); purely local rules ignore it.
type Rule interface {
	Validate(ctx context.Context, value any) error
}

// Policy is an ordered list of rules. Apply runs them in order and
// returns the first failure, leaving later rules unevaluated.
type Policy []Rule

// Apply runs the policy against a value, stopping at the first failure.
func (p Policy) Apply(ctx context.Context, value any) error {
	for _, rule := range p {
		if err := rule.Validate(ctx, value); err != nil {
			return err
		}
	}
	return nil
}

// MinLength rejects strings shorter than N characters.
type MinLength struct {
	N int
}

// Validate implements Rule.
func (r MinLength) Validate(_ context.Context, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", ErrValidation, value)
	}
	if len(s) < r.N {
		return fmt.Errorf("%w: length %d is below minimum %d", ErrValidation, len(s), r.N)
	}
	return nil
}

// MaxLength rejects strings longer than N characters.
type MaxLength struct {
	N int
}

// Validate implements Rule.
func (r MaxLength) Validate(_ context.Context, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", ErrValidation, value)
	}
	if len(s) > r.N {
		return fmt.Errorf("%w: length %d exceeds maximum %d", ErrValidation, len(s), r.N)
	}
	return nil
}

// ExactType rejects values whose runtime type is not exactly T.
// This is an identity check, not an assignability check: a named type
// with the same underlying type as T is rejected.
type ExactType struct {
	T reflect.Type
}

// TypeOf builds an ExactType rule from a sample value.
func TypeOf(sample any) ExactType {
	return ExactType{T: reflect.TypeOf(sample)}
}

// Validate implements Rule.
func (r ExactType) Validate(_ context.Context, value any) error {
	if got := reflect.TypeOf(value); got != r.T {
		return fmt.Errorf("%w: expected type %v, got %v", ErrValidation, r.T, got)
	}
	return nil
}

// Pattern rejects strings that do not match the full regular expression.
// Non-string input is a validation failure, not a panic.
type Pattern struct {
	Regexp *regexp.Regexp
}

// MatchString builds a Pattern rule, anchoring the expression so the
// whole value must match.
func MatchString(expr string) Pattern {
	return Pattern{Regexp: regexp.MustCompile("^(?:" + expr + ")$")}
}

// Validate implements Rule.
func (r Pattern) Validate(_ context.Context, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", ErrValidation, value)
	}
	if !r.Regexp.MatchString(s) {
		return fmt.Errorf("%w: value does not match required pattern", ErrValidation)
	}
	return nil
}
