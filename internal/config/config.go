package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"ovhapi/ovh"
)

const (
	EnvPrefix      = "OVH"
	ConfigFileName = ".ovh.conf"
)

type Config struct {
	Endpoint          string        `mapstructure:"endpoint"           validate:"required,ovh_endpoint"`
	ApplicationKey    string        `mapstructure:"application_key"`
	ApplicationSecret string        `mapstructure:"application_secret"`
	ConsumerKey       string        `mapstructure:"consumer_key"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"gt=0"`
	Separator         string        `mapstructure:"separator"          validate:"len=1"`
	LogLevel          string        `mapstructure:"log_level"          validate:"oneof=trace debug info warn error"`
	LogFormat         string        `mapstructure:"log_format"         validate:"oneof=terminal json logfmt"`
	LogFile           string        `mapstructure:"log_file"`

	// ConfigFiles lists the INI files that were read, lowest priority first.
	ConfigFiles []string `mapstructure:"-"`
}

type Options struct {
	// ConfigFile is an explicit INI file. It must exist; the default search is skipped.
	ConfigFile string

	// SearchPaths replaces the default lookup ($HOME/.ovh.conf then ./.ovh.conf).
	// Later files override earlier ones; missing files are skipped.
	SearchPaths []string

	// EnvFile is loaded into the environment without overriding it. Defaults to ".env".
	EnvFile string

	// Flags are bound by name: "application-key" sets application_key.
	Flags *pflag.FlagSet
}

// keys lists every setting; flags and environment variables derive their names from it.
var keys = []string{
	"endpoint",
	"application_key",
	"application_secret",
	"consumer_key",
	"timeout",
	"separator",
	"log_level",
	"log_format",
	"log_file",
}

// credentialKeys are read from the INI section named after the endpoint.
var credentialKeys = []string{"application_key", "application_secret", "consumer_key"}

// Load resolves the configuration. Priority, highest first: changed flags,
// OVH_* environment variables (including those from the .env file), INI files,
// defaults.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load(envFile)

	vip := viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, k := range keys {
		if err := vip.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	vip.SetDefault("endpoint", "ovh-eu")
	vip.SetDefault("timeout", ovh.DefaultTimeout)
	vip.SetDefault("separator", string(ovh.DefaultParameterSeparator))
	vip.SetDefault("log_level", "info")
	vip.SetDefault("log_format", "terminal")

	if opts.Flags != nil {
		for _, k := range keys {
			if f := opts.Flags.Lookup(strings.ReplaceAll(k, "_", "-")); f != nil {
				if err := vip.BindPFlag(k, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	file, used, err := readINI(opts)
	if err != nil {
		return Config{}, err
	}
	if file != nil {
		if err := mergeINI(vip, file); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.ConfigFiles = used

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readINI(opts Options) (*ini.File, []string, error) {
	if opts.ConfigFile != "" {
		f, err := ini.Load(opts.ConfigFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
		return f, []string{opts.ConfigFile}, nil
	}

	paths := opts.SearchPaths
	if paths == nil {
		paths = defaultSearchPaths()
	}
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return nil, nil, nil
	}

	sources := make([]any, len(found))
	for i, p := range found {
		sources[i] = p
	}
	f, err := ini.Load(sources[0], sources[1:]...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return f, found, nil
}

func defaultSearchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ConfigFileName))
	}
	return append(paths, ConfigFileName)
}

// mergeINI applies [default] endpoint=... and then the credentials of the
// section named after the effective endpoint. The endpoint may come from a flag
// or the environment, so it is resolved before the credentials are looked up.
func mergeINI(vip *viper.Viper, file *ini.File) error {
	if key, err := file.Section("default").GetKey("endpoint"); err == nil && key.String() != "" {
		if err := vip.MergeConfigMap(map[string]any{"endpoint": key.String()}); err != nil {
			return fmt.Errorf("merge config: %w", err)
		}
	}

	endpoint := strings.TrimSpace(vip.GetString("endpoint"))
	if endpoint == "" {
		return nil
	}
	section, err := file.GetSection(endpoint)
	if err != nil {
		return nil
	}
	values := map[string]any{}
	for _, k := range credentialKeys {
		if section.HasKey(k) {
			values[k] = section.Key(k).String()
		}
	}
	if len(values) == 0 {
		return nil
	}
	if err := vip.MergeConfigMap(values); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ovh_endpoint", func(fl validator.FieldLevel) bool {
		_, err := ovh.ResolveEndpoint(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the settings that do not depend on the command being run.
// Missing credentials are reported by the client when a call needs them.
func Validate(c Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "ovh_endpoint":
		return fmt.Sprintf("unknown endpoint %q, valid endpoints: %s", fe.Value(), strings.Join(ovh.EndpointNames(), ","))
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be exactly %s character", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	}
	return fe.Error()
}

// NewClient builds an API client from the configuration.
func (c Config) NewClient(opts ...ovh.Option) (*ovh.Client, error) {
	sep, _ := utf8.DecodeRuneInString(c.Separator)
	opts = append([]ovh.Option{
		ovh.WithTimeout(c.Timeout),
		ovh.WithParameterSeparator(sep),
	}, opts...)
	return ovh.NewClient(c.Endpoint, c.ApplicationKey, c.ApplicationSecret, c.ConsumerKey, opts...)
}

func (c Config) String() string {
	return fmt.Sprintf("endpoint=%s applicationKey=%s applicationSecret=%s consumerKey=%s timeout=%s",
		c.Endpoint, mask(c.ApplicationKey), mask(c.ApplicationSecret), mask(c.ConsumerKey), c.Timeout)
}

func mask(s string) string {
	if s == "" {
		return "<unset>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
