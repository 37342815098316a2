package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: "DEBUG"
  format: "json"
  output: "stdout"

listen:
  address: "0.0.0.0:16509"

driver:
  backend: "stub"
  stub_node_memory: "8Gi"

shutdown_timeout: 15s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "0.0.0.0:16509", cfg.Listen.Address)
	require.Equal(t, "stub", cfg.Driver.Backend)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "stub", cfg.Driver.Backend)
	require.Equal(t, "127.0.0.1:16509", cfg.Listen.Address)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging: [this is not: a map"), 0600))

	_, err := Load(configPath)
	require.Error(t, err)
}

func TestLoad_EnvironmentVariablesWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("listen:\n  address: \"127.0.0.1:1\"\n"), 0600))

	t.Setenv("VIRTD_LISTEN_ADDRESS", "10.0.0.1:16509")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:16509", cfg.Listen.Address)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "stub", cfg.Driver.Backend)
	require.Equal(t, "virtd-stub", cfg.Driver.StubHostname)
	require.True(t, cfg.Metrics.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	require.NotEmpty(t, path)
	require.Contains(t, yamlSafePath(path), "virtd")
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()
	require.NotEmpty(t, dir)
}

func TestDefaultConfigExists(t *testing.T) {
	// Just exercise the call; we don't control $HOME deterministically here.
	_ = DefaultConfigExists()
}

func TestValidate_KerberosRequiresKeytab(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Kerberos.Enabled = true
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "keytab_path")
}

func TestValidate_RejectsUnknownDriverBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Driver.Backend = "qemu-direct"
	require.Error(t, Validate(cfg))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Listen.Address = "198.51.100.1:16509"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "198.51.100.1:16509", loaded.Listen.Address)
}
