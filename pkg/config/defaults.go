package config

import (
	"strings"
	"time"

	"github.com/go-virt/virtd/internal/bytesize"
)

// ApplyDefaults fills in any zero-valued fields with their defaults, after
// a config file and environment variables have been merged in. Explicit
// values are always preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyListenDefaults(&cfg.Listen)
	applyDriverDefaults(&cfg.Driver)
	applyKerberosDefaults(&cfg.Kerberos)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyListenDefaults(cfg *ListenConfig) {
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:16509"
	}
}

func applyDriverDefaults(cfg *DriverConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "stub"
	}
	if cfg.StubHostname == "" {
		cfg.StubHostname = "virtd-stub"
	}
	if cfg.StubNodeMemory == 0 {
		cfg.StubNodeMemory = 16 * bytesize.GiB
	}
}

func applyKerberosDefaults(cfg *KerberosConfig) {
	// Enabled defaults to false: AUTH_SASL is only required when an
	// operator has explicitly opted in, since it requires a keytab.
	if cfg.MaxClockSkew == 0 {
		cfg.MaxClockSkew = 5 * time.Minute
	}
	if cfg.Krb5Conf == "" {
		cfg.Krb5Conf = "/etc/krb5.conf"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config with every default applied, usable
// directly as a runnable configuration or as the basis for `virtd config
// show`.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Listen:  ListenConfig{},
		Driver:  DriverConfig{},
		Metrics: MetricsConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
