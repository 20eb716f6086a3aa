// Package config handles configuration loading, parsing, and validation.
//
// A configuration is selected once at process start from a named profile
// (dev, dev-remote, prod, test). Each profile supplies defaults for logging
// and the datastore; YAML config files and TASKHUB_* environment variables
// override them. The resulting Config is passed explicitly to the components
// that need it.
package config
