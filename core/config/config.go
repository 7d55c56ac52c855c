package config

import (
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"reqsync/core/errs"
	"reqsync/core/jama"
	"reqsync/core/logger"
	"reqsync/core/reconcile"
)

// Config holds all configuration for the tool, divided into partial
// configurations owned by their packages.
type Config struct {
	// Jama holds the remote store connection settings.
	Jama jama.Config `mapstructure:"jama"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Sync holds engine tunables.
	Sync reconcile.Config `mapstructure:"sync"`
}

// Load loads configuration from environment variables and a .env file.
func Load(path string) (*Config, error) {
	// Load .env if it exists; absence is fine.
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values.
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. JAMA_BASE_URL -> jama.base_url).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &errs.ConfigError{Err: err}
	}

	return &config, nil
}

// Validate checks the keys that remote commands cannot run without.
// Template creation never calls it.
func (c *Config) Validate() error {
	var missing []string
	if c.Jama.BaseURL == "" {
		missing = append(missing, "jama.base_url")
	}
	if c.Jama.ProjectID == 0 {
		missing = append(missing, "jama.project_id")
	}
	if c.Jama.APIID == "" {
		missing = append(missing, "jama.api_id")
	}
	if c.Jama.APISecret == "" {
		missing = append(missing, "jama.api_secret")
	}
	if len(missing) > 0 {
		return errs.NewConfigError(missing...)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default
// values in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv.
		v.SetDefault(key, defaultValue)
	}
}
