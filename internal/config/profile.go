package config

import "strings"

// Profile names a set of configuration defaults.
type Profile string

// Known profiles.
const (
	ProfileDevelopment       Profile = "dev"
	ProfileDevelopmentRemote Profile = "dev-remote"
	ProfileProduction        Profile = "prod"
	ProfileTest              Profile = "test"
)

// ParseProfile resolves a profile name. Empty, "default" and unrecognised
// names resolve to ProfileDevelopment.
func ParseProfile(name string) Profile {
	switch p := Profile(strings.ToLower(strings.TrimSpace(name))); p {
	case ProfileDevelopment, ProfileDevelopmentRemote, ProfileProduction, ProfileTest:
		return p
	default:
		return ProfileDevelopment
	}
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return string(p)
}

// defaults returns the flattened default settings for the profile.
func (p Profile) defaults() map[string]any {
	d := map[string]any{
		"server.port":                        8080,
		"server.shutdown_timeout_seconds":    10,
		"log.level":                          "debug",
		"log.format":                         "text",
		"log.file":                           "",
		"database.url":                       "",
		"database.max_open_conns":            10,
		"database.max_idle_conns":            5,
		"database.conn_max_lifetime_minutes": 5,
		"database.auto_migrate":              false,
	}

	switch p {
	case ProfileDevelopmentRemote:
		// the remote database must be named explicitly
	case ProfileProduction:
		d["log.level"] = "warn"
		d["log.format"] = "json"
		d["log.file"] = "../logs/taskhub.log"
		d["database.max_open_conns"] = 25
		d["database.max_idle_conns"] = 10
	case ProfileTest:
		d["database.url"] = "sqlite::memory:"
		d["database.max_open_conns"] = 1
		d["database.max_idle_conns"] = 1
		d["database.conn_max_lifetime_minutes"] = 0
		d["database.auto_migrate"] = true
	default:
		d["database.url"] = "postgres://localhost:5432/taskhub_dev?sslmode=disable"
		d["database.auto_migrate"] = true
	}

	return d
}
