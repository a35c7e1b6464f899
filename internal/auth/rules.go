package auth

import (
	"context"
	"fmt"

	"github.com/lumakit/lights-core/internal/validate"
)

// BreachRule adapts a BreachChecker into a validation rule so it can be
// composed into a Policy after the cheap length rules. Placement
// matters: a too-short or too-long password never reaches the network.
type BreachRule struct {
	Checker *BreachChecker
}

// Validate implements validate.Rule. A breached password is surfaced as
// both a *BreachError (via errors.As) and a validation failure (via
// errors.Is on validate.ErrValidation).
func (r BreachRule) Validate(ctx context.Context, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", validate.ErrValidation, value)
	}
	if err := r.Checker.Check(ctx, s); err != nil {
		return fmt.Errorf("%w: %w", validate.ErrValidation, err)
	}
	return nil
}

// PasswordPolicy builds the plaintext password policy: length bounds
// first, breach lookup last. A nil checker yields a length-only policy.
func PasswordPolicy(checker *BreachChecker) validate.Policy {
	policy := validate.Policy{
		validate.MinLength{N: MinPasswordLength},
		validate.MaxLength{N: MaxPasswordLength},
	}
	if checker != nil {
		policy = append(policy, BreachRule{Checker: checker})
	}
	return policy
}

// UsernamePolicy builds the username policy. The charset pattern carries
// no length bounds; the length rules own those.
func UsernamePolicy() validate.Policy {
	return validate.Policy{
		validate.MinLength{N: MinUsernameLength},
		validate.MaxLength{N: MaxUsernameLength},
		validate.MatchString(usernameCharset),
	}
}
