// Package config loads and validates Lights Core configuration.
//
// Configuration is layered: hardcoded defaults, then the YAML file,
// then LIGHTS_* environment variable overrides. Validation runs after
// all layers are applied, so a secret supplied only via environment
// still satisfies the required-field checks.
package config
