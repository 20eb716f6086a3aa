package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. TASKHUB_DATABASE_URL for database.url.
const EnvPrefix = "TASKHUB"

// ProfileEnvVar selects the profile when LoadOptions.Profile is empty.
const ProfileEnvVar = EnvPrefix + "_PROFILE"

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Profile overrides the TASKHUB_PROFILE environment variable.
	Profile string
	// ConfigFile is an explicit YAML file. When empty, config.yaml and
	// config.<profile>.yaml are looked up in SearchPaths.
	ConfigFile string
	// SearchPaths defaults to "." and "./config".
	SearchPaths []string
}

// Load builds the configuration for the selected profile.
// Precedence, lowest first: profile defaults, config files, environment.
// Returns a populated Config or an error if reading or validation fails.
func Load(opts LoadOptions) (*Config, error) {
	name := opts.Profile
	if name == "" {
		name = os.Getenv(ProfileEnvVar)
	}
	profile := ParseProfile(name)

	v := viper.New()
	for key, value := range profile.defaults() {
		v.SetDefault(key, value)
	}

	if err := readConfigFiles(v, profile, opts); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Profile = profile

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFiles(v *viper.Viper, profile Profile, opts LoadOptions) error {
	v.SetConfigType("yaml")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
		return nil
	}

	paths := opts.SearchPaths
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for _, name := range []string{"config", "config." + profile.String()} {
		v.SetConfigName(name)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return fmt.Errorf("failed to read %s config: %w", name, err)
		}
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "dburl" accepts the connection strings the datastore layer can open.
	_ = v.RegisterValidation("dburl", func(fl validator.FieldLevel) bool {
		u := fl.Field().String()
		for _, prefix := range []string{"postgres://", "postgresql://", "sqlite:"} {
			if strings.HasPrefix(u, prefix) && len(u) > len(prefix) {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
