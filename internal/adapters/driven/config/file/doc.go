// Package file loads engine configuration from a TOML file in the
// cerebro config directory, with defaults for every setting so a missing
// file still yields a runnable configuration.
package file
