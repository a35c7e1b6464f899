// Package light manages the light inventory: named on/off fixtures
// persisted in SQLite with unique names.
//
// The package owns its validation (name length) and the explicit
// string-to-bool parser used when power state arrives as form text
// rather than JSON booleans.
package light
