package config

import (
	"testing"
	"time"

	"github.com/go-virt/virtd/internal/bytesize"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_LogLevelNormalizedToUppercase(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaults_Driver(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "stub", cfg.Driver.Backend)
	require.Equal(t, "virtd-stub", cfg.Driver.StubHostname)
	require.Equal(t, 16*bytesize.GiB, cfg.Driver.StubNodeMemory)
}

func TestApplyDefaults_Kerberos(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, 5*time.Minute, cfg.Kerberos.MaxClockSkew)
	require.Equal(t, "/etc/krb5.conf", cfg.Kerberos.Krb5Conf)
	require.False(t, cfg.Kerberos.Enabled)
}

func TestApplyDefaults_MetricsPortOnlySetWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.Equal(t, 0, cfg.Metrics.Port)

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	require.Equal(t, 9090, cfg.Metrics.Port)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Listen: ListenConfig{Address: "192.0.2.1:1"},
		Driver: DriverConfig{Backend: "stub", StubHostname: "custom-host"},
	}
	ApplyDefaults(cfg)

	require.Equal(t, "192.0.2.1:1", cfg.Listen.Address)
	require.Equal(t, "custom-host", cfg.Driver.StubHostname)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NotEmpty(t, cfg.Listen.Address)
	require.NotEmpty(t, cfg.Driver.Backend)
	require.NotZero(t, cfg.ShutdownTimeout)
}
