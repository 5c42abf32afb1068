// Package config loads, normalizes, and validates imagegroup configuration.
//
// Settings come from a TOML file found via --config, the XDG config
// directory, or ./imagegroup.toml in that order. A missing file is not an
// error; repository defaults apply. Command-line flags are layered on top
// by the CLI after Load returns.
package config
