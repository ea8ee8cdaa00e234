package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovhapi/ovh"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(EnvPrefix+"_"+strings.ToUpper(k), "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func isolated(t *testing.T) Options {
	t.Helper()
	clearEnv(t)
	return Options{
		SearchPaths: []string{},
		EnvFile:     filepath.Join(t.TempDir(), "missing.env"),
	}
}

const sampleINI = `
[default]
endpoint=ovh-ca

[ovh-eu]
application_key=EU_AK
application_secret=EU_AS
consumer_key=EU_CK

[ovh-ca]
application_key=CA_AK
application_secret=CA_AS
consumer_key=CA_CK
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(isolated(t))
	require.NoError(t, err)

	assert.Equal(t, "ovh-eu", cfg.Endpoint)
	assert.Equal(t, ovh.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, ",", cfg.Separator)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "terminal", cfg.LogFormat)
	assert.Empty(t, cfg.ApplicationKey)
	assert.Empty(t, cfg.ConfigFiles)
}

func TestLoad_INISectionFollowsEndpoint(t *testing.T) {
	opts := isolated(t)
	path := writeFile(t, t.TempDir(), ConfigFileName, sampleINI)
	opts.SearchPaths = []string{path}

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "ovh-ca", cfg.Endpoint)
	assert.Equal(t, "CA_AK", cfg.ApplicationKey)
	assert.Equal(t, "CA_AS", cfg.ApplicationSecret)
	assert.Equal(t, "CA_CK", cfg.ConsumerKey)
	assert.Equal(t, []string{path}, cfg.ConfigFiles)
}

func TestLoad_EnvOverridesINI(t *testing.T) {
	opts := isolated(t)
	opts.SearchPaths = []string{writeFile(t, t.TempDir(), ConfigFileName, sampleINI)}
	t.Setenv("OVH_ENDPOINT", "ovh-eu")
	t.Setenv("OVH_CONSUMER_KEY", "ENV_CK")
	t.Setenv("OVH_TIMEOUT", "45s")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "ovh-eu", cfg.Endpoint)
	assert.Equal(t, "EU_AK", cfg.ApplicationKey)
	assert.Equal(t, "ENV_CK", cfg.ConsumerKey)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	opts := isolated(t)
	t.Setenv("OVH_CONSUMER_KEY", "ENV_CK")
	t.Setenv("OVH_APPLICATION_KEY", "ENV_AK")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("consumer-key", "", "")
	flags.String("application-key", "", "")
	flags.Duration("timeout", 0, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--consumer-key=FLAG_CK", "--timeout=30s", "--log-level=DEBUG"}))
	opts.Flags = flags

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "FLAG_CK", cfg.ConsumerKey)
	assert.Equal(t, "ENV_AK", cfg.ApplicationKey, "unchanged flags do not shadow the environment")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_LaterFilesOverride(t *testing.T) {
	opts := isolated(t)
	home := writeFile(t, t.TempDir(), ConfigFileName, sampleINI)
	local := writeFile(t, t.TempDir(), ConfigFileName, "[ovh-ca]\nconsumer_key=LOCAL_CK\n")
	opts.SearchPaths = []string{home, filepath.Join(t.TempDir(), "absent.conf"), local}

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "ovh-ca", cfg.Endpoint)
	assert.Equal(t, "CA_AK", cfg.ApplicationKey)
	assert.Equal(t, "LOCAL_CK", cfg.ConsumerKey)
	assert.Equal(t, []string{home, local}, cfg.ConfigFiles)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	opts := isolated(t)
	opts.ConfigFile = writeFile(t, t.TempDir(), "custom.conf", sampleINI)

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "CA_CK", cfg.ConsumerKey)

	opts.ConfigFile = filepath.Join(t.TempDir(), "missing.conf")
	_, err = Load(opts)
	assert.Error(t, err)
}

func TestLoad_MalformedINI(t *testing.T) {
	opts := isolated(t)
	opts.SearchPaths = []string{writeFile(t, t.TempDir(), ConfigFileName, "[broken\nendpoint=ovh-eu\n")}

	_, err := Load(opts)
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	opts := isolated(t)
	opts.EnvFile = writeFile(t, t.TempDir(), ".env", "OVH_APPLICATION_KEY=DOTENV_AK\n")
	require.NoError(t, os.Unsetenv("OVH_APPLICATION_KEY"))

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "DOTENV_AK", cfg.ApplicationKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		message string
	}{
		{"unknown endpoint", "OVH_ENDPOINT", "ovh-mars", "unknown endpoint"},
		{"log level", "OVH_LOG_LEVEL", "loud", "LogLevel must be one of"},
		{"log format", "OVH_LOG_FORMAT", "xml", "LogFormat must be one of"},
		{"timeout", "OVH_TIMEOUT", "-1s", "Timeout must be positive"},
		{"separator", "OVH_SEPARATOR", ";;", "Separator must be exactly 1 character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolated(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConfig_NewClient(t *testing.T) {
	cfg := Config{
		Endpoint:          "ovh-us",
		ApplicationKey:    "AK",
		ApplicationSecret: "AS",
		ConsumerKey:       "CK",
		Timeout:           10 * time.Second,
		Separator:         ";",
	}
	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, ovh.Endpoints["ovh-us"], c.Endpoint())
	assert.Equal(t, 10*time.Second, c.DefaultTimeout())
	assert.Equal(t, ';', c.ParameterSeparator())
	assert.Equal(t, "CK", c.ConsumerKey())
}

func TestConfig_String(t *testing.T) {
	cfg := Config{Endpoint: "ovh-eu", ApplicationKey: "ABCDEFGH", ConsumerKey: "xy", Timeout: time.Minute}
	assert.Equal(t, "endpoint=ovh-eu applicationKey=ABCD**** applicationSecret=<unset> consumerKey=**** timeout=1m0s", cfg.String())
}
