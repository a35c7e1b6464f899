package light

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumakit/lights-core/internal/validate"
)

// Name length limits, mirrored by the schema CHECK constraint.
const (
	MinNameLength = 3
	MaxNameLength = 32
)

// Light represents a single controllable light fixture.
type Light struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsPoweredOn bool      `json:"is_powered_on"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sentinel errors for light operations.
var (
	ErrLightNotFound = errors.New("light not found")

	// ErrDataIntegrity is the kind for store-level constraint violations.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// ErrLightExists is the name-uniqueness violation surfaced by the store.
var ErrLightExists = fmt.Errorf("%w: light name already exists", ErrDataIntegrity)

// namePolicy validates light names on create and update.
var namePolicy = validate.Policy{
	validate.MinLength{N: MinNameLength},
	validate.MaxLength{N: MaxNameLength},
}

// ValidateName applies the name policy; failures wrap validate.ErrValidation.
func ValidateName(ctx context.Context, name string) error {
	return namePolicy.Apply(ctx, name)
}

// ParseBool converts client-supplied power state to a bool. Form values
// arrive as text, and bare truthiness is a trap ("False" is a non-empty
// string), so only an enumerated set is accepted:
//
//	true:  "true", "t", "1"
//	false: "false", "f", "0"
//
// Anything else is a validation error.
func ParseBool(value string) (bool, error) {
	switch value {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a recognised boolean", validate.ErrValidation, value)
	}
}
