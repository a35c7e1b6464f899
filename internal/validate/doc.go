// Package validate provides composable input validation rules.
//
// A Policy is an ordered list of rules applied to a single field value.
// Evaluation stops at the first rule that rejects the value, so expensive
// rules (such as remote breach lookups) can be placed after cheap ones
// and never run for input that is already rejected.
//
// All rule failures wrap ErrValidation, so callers can classify them with
// a single errors.Is check regardless of which rule fired.
package validate
