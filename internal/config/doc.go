// Package config loads, merges and validates the field-crm configuration.
//
// Values are assembled from several sources; later sources override earlier
// non-zero fields:
//  1. Built-in defaults
//  2. Config file (JSON, YAML or TOML, chosen by extension)
//  3. Environment variables prefixed with FIELDCRM_
//  4. Command-line flags registered with [RegisterFlags]
//
// [GetClientConfig] returns the validated runtime view used by the client.
package config
