// Package config loads, normalizes, and validates Borsch configuration data.
//
// It supplies repository defaults, reads TOML files, expands user paths, and
// honours the BORSCH_API_URL environment override. The Config type
// centralizes every knob the CLI and execution controller need: where the
// playground service lives, which language version to submit, how often to
// poll for output, and how to log.
//
// Always obtain settings through this package so downstream code receives a
// trimmed base URL, canonical log formats, and clear validation errors.
package config
