// Package config loads and validates virtd's static configuration: where
// it listens, which driver backend it drives, its GSSAPI/Kerberos
// authentication settings, logging, and metrics.
//
// Configuration sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (VIRTD_*)
//  3. YAML configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-virt/virtd/internal/bytesize"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is virtd's complete static configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Listen configures the socket the dispatch core accepts connections on.
	Listen ListenConfig `mapstructure:"listen" yaml:"listen"`

	// Driver selects and configures the hypervisor driver facade backend.
	Driver DriverConfig `mapstructure:"driver" yaml:"driver"`

	// Kerberos configures the GSSAPI/Kerberos SASL mechanism. When
	// disabled, sessions start in PRE_AUTH_NONE and no SASL negotiation is
	// required.
	Kerberos KerberosConfig `mapstructure:"kerberos" yaml:"kerberos"`

	// Metrics configures the Prometheus metrics HTTP endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout bounds how long the listener loop waits for
	// in-flight sessions to drain during a graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// ListenConfig configures the accept loop around the dispatch core.
type ListenConfig struct {
	// Address is the "host:port" the daemon listens on.
	Address string `mapstructure:"address" validate:"required" yaml:"address"`

	// TLSCert and TLSKey, when both set, wrap accepted connections in TLS.
	// When either is empty the listener serves plain TCP.
	TLSCert string `mapstructure:"tls_cert" yaml:"tls_cert,omitempty"`
	TLSKey  string `mapstructure:"tls_key" yaml:"tls_key,omitempty"`

	// ReadOnly is forced onto every session accepted on this listener,
	// regardless of the flags a client passes to Open.
	ReadOnly bool `mapstructure:"read_only" yaml:"read_only"`
}

// TLSEnabled reports whether this listener should wrap connections in TLS.
func (l ListenConfig) TLSEnabled() bool {
	return l.TLSCert != "" && l.TLSKey != ""
}

// DriverConfig selects the hypervisor driver facade backend.
type DriverConfig struct {
	// Backend selects the driver.Facade implementation. Only "stub" exists
	// today; the field exists so a real libvirt-backed facade can be
	// selected without changing the dispatch core.
	Backend string `mapstructure:"backend" validate:"required,oneof=stub" yaml:"backend"`

	// StubHostname is the hostname the in-memory stub driver reports from
	// GetHostname.
	StubHostname string `mapstructure:"stub_hostname" yaml:"stub_hostname,omitempty"`

	// StubNodeMemory is the total memory the stub driver reports from
	// NodeGetInfo, in human-readable form ("16Gi", "512Mi").
	StubNodeMemory bytesize.ByteSize `mapstructure:"stub_node_memory" yaml:"stub_node_memory,omitempty"`

	// StubUUIDNamespace seeds deterministic UUID generation for
	// domains/networks the stub fabricates, so repeated runs against the
	// same config produce the same identities. Empty uses a random
	// namespace each run.
	StubUUIDNamespace string `mapstructure:"stub_uuid_namespace" yaml:"stub_uuid_namespace,omitempty"`
}

// ResolvedUUIDNamespace parses StubUUIDNamespace, falling back to a fixed
// well-known namespace UUID when unset or invalid so stub identity
// generation is deterministic by default.
func (d DriverConfig) ResolvedUUIDNamespace() uuid.UUID {
	if d.StubUUIDNamespace == "" {
		return uuid.NameSpaceOID
	}
	if ns, err := uuid.Parse(d.StubUUIDNamespace); err == nil {
		return ns
	}
	return uuid.NameSpaceOID
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: "text" or "json".
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: "stdout", "stderr", or a
	// file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether the metrics registry and HTTP server run.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port the metrics endpoint listens on.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// KerberosConfig configures the GSSAPI/Kerberos SASL mechanism backing the
// auth gate (internal/auth/gssapi). When Enabled is false, sessions start
// already authenticated and AUTH_SASL_* is never required.
type KerberosConfig struct {
	// Enabled controls whether sessions require SASL/GSSAPI negotiation
	// before any other procedure is admitted.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// KeytabPath is the path to the service keytab.
	// Override: VIRTD_KERBEROS_KEYTAB (VIRTD_KERBEROS_KEYTAB_PATH for compat).
	KeytabPath string `mapstructure:"keytab_path" yaml:"keytab_path,omitempty"`

	// ServicePrincipal is the service principal name (service/host@REALM).
	// Override: VIRTD_KERBEROS_PRINCIPAL (VIRTD_KERBEROS_SERVICE_PRINCIPAL for compat).
	ServicePrincipal string `mapstructure:"service_principal" yaml:"service_principal,omitempty"`

	// Krb5Conf is the path to krb5.conf. Override: VIRTD_KERBEROS_KRB5CONF.
	// Defaults to /etc/krb5.conf when unset.
	Krb5Conf string `mapstructure:"krb5_conf" yaml:"krb5_conf,omitempty"`

	// MaxClockSkew bounds the allowed clock difference between client and
	// server during AP-REQ verification.
	MaxClockSkew time.Duration `mapstructure:"max_clock_skew" yaml:"max_clock_skew"`

	// IdentityMapping decides which verified principals may open sessions.
	IdentityMapping IdentityMappingConfig `mapstructure:"identity_mapping" yaml:"identity_mapping"`
}

// IdentityMappingConfig controls which verified Kerberos principals are
// admitted past AUTH_SASL_STEP. Unlike a file-serving daemon, there is no
// UID/GID to map into here — only an authorization decision per principal.
type IdentityMappingConfig struct {
	// StaticMap maps "principal@REALM" to a display identity.
	StaticMap map[string]StaticIdentity `mapstructure:"static_map" yaml:"static_map,omitempty"`

	// DefaultDeny controls what happens to a verified principal absent
	// from StaticMap. Default false: any verified principal is admitted.
	DefaultDeny bool `mapstructure:"default_deny" yaml:"default_deny"`
}

// StaticIdentity is the display identity attached to a known principal.
type StaticIdentity struct {
	// DisplayName is logged in place of the raw "principal@realm" string.
	DisplayName string `mapstructure:"display_name" yaml:"display_name,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning a user-friendly error pointing at
// `virtd init`-equivalent guidance when no config file exists at the
// requested location.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Create one with:\n"+
				"  virtd config show > %s\n\n"+
				"Or specify a custom config file:\n"+
				"  virtd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath(), GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// validate is a package-level validator instance; go-playground/validator
// recommends reusing one instance since it caches struct metadata.
var validate = validator.New()

// Validate checks cfg against its `validate` struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if cfg.Kerberos.Enabled {
		if cfg.Kerberos.KeytabPath == "" && os.Getenv("VIRTD_KERBEROS_KEYTAB") == "" {
			return fmt.Errorf("kerberos.enabled is true but no keytab_path configured")
		}
		if cfg.Kerberos.ServicePrincipal == "" && os.Getenv("VIRTD_KERBEROS_PRINCIPAL") == "" {
			return fmt.Errorf("kerberos.enabled is true but no service_principal configured")
		}
	}
	return nil
}

// SaveConfig writes cfg to path in YAML form.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("VIRTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize,
// letting the config file spell driver.stub_node_memory as "16Gi" instead
// of a raw byte count.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "virtd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "virtd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
