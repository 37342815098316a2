package commands

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/go-virt/virtd/internal/auth/gssapi"
	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/logger"
	"github.com/go-virt/virtd/internal/metrics"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
	"github.com/go-virt/virtd/pkg/auth/kerberos"
	"github.com/go-virt/virtd/pkg/config"
)

var (
	foreground bool
	pidFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the virtd dispatch daemon",
	Long: `Start virtd, accepting libvirt wire-protocol connections and
dispatching RPC procedures to the configured driver backend.

By default the server runs in the background (daemon mode). Use --foreground
to run in the foreground, e.g. under a process supervisor.

Examples:
  # Start in background (default)
  virtd start

  # Start in foreground
  virtd start --foreground

  # Start with a custom config file
  virtd start --config /etc/virtd/config.yaml`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/virtd/virtd.pid)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("virtd starting",
		"version", Version,
		"config_source", getConfigSource(GetConfigFile()),
		"listen", cfg.Listen.Address,
		"driver", cfg.Driver.Backend)

	facade, err := buildDriver(cfg)
	if err != nil {
		return fmt.Errorf("build driver backend: %w", err)
	}

	verifier, keytabProvider, err := buildVerifier(cfg)
	if err != nil {
		return fmt.Errorf("build kerberos verifier: %w", err)
	}
	if keytabProvider != nil {
		defer func() { _ = keytabProvider.Close() }()
	}

	registry := metrics.NewRegistry(prometheus.DefaultRegisterer)
	handle.SetMetrics(registry)

	if cfg.Metrics.Enabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		metricsSrv := metrics.NewServer(metricsAddr, prometheus.DefaultGatherer)
		go func() {
			if err := metricsSrv.Serve(ctx); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics enabled", "address", metricsAddr)
	} else {
		logger.Info("metrics disabled")
	}

	srv := &dispatch.Server{
		Facade:       facade,
		Verifier:     verifier,
		ReadOnly:     cfg.Listen.ReadOnly,
		AuthRequired: cfg.Kerberos.Enabled,
		Metrics:      registry,
	}

	ln, err := buildListener(cfg)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Listen.Address, err)
	}
	logger.Info("listening", "address", ln.Addr().String(), "tls", cfg.Listen.TLSEnabled())

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("write pid file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	var conns sync.WaitGroup
	acceptDone := make(chan error, 1)
	go func() {
		acceptDone <- acceptLoop(ctx, ln, srv, &conns)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("virtd is running, press Ctrl+C to stop")

	select {
	case <-sigCh:
		signal.Stop(sigCh)
		logger.Info("shutdown signal received, closing listener")
		cancel()
		_ = ln.Close()
		<-acceptDone

		drained := make(chan struct{})
		go func() {
			conns.Wait()
			close(drained)
		}()

		select {
		case <-drained:
			logger.Info("all connections drained")
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("shutdown timeout elapsed, connections may still be draining")
		}
		logger.Info("virtd stopped")

	case err := <-acceptDone:
		signal.Stop(sigCh)
		if err != nil {
			logger.Error("accept loop stopped", "error", err)
			return err
		}
		logger.Info("virtd stopped")
	}

	return nil
}

// acceptLoop accepts connections on ln and hands each to srv.Serve in its
// own goroutine, tracked in conns so shutdown can wait for them to drain,
// until ctx is canceled or the listener is closed.
func acceptLoop(ctx context.Context, ln net.Listener, srv *dispatch.Server, conns *sync.WaitGroup) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		conns.Add(1)
		go func() {
			defer conns.Done()
			srv.Serve(ctx, conn)
		}()
	}
}

// buildListener binds cfg.Listen.Address, wrapping it in TLS when a cert and
// key are configured.
func buildListener(cfg *config.Config) (net.Listener, error) {
	if !cfg.Listen.TLSEnabled() {
		return net.Listen("tcp", cfg.Listen.Address)
	}

	cert, err := tls.LoadX509KeyPair(cfg.Listen.TLSCert, cfg.Listen.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return tls.Listen("tcp", cfg.Listen.Address, tlsCfg)
}

// buildDriver constructs the driver.Facade backend named by cfg.Driver.Backend.
func buildDriver(cfg *config.Config) (driver.Facade, error) {
	switch cfg.Driver.Backend {
	case "stub", "":
		return driver.NewStubWithOptions(driver.StubOptions{
			Hostname:      cfg.Driver.StubHostname,
			NodeMemoryKB:  cfg.Driver.StubNodeMemory.Uint64() / 1024,
			UUIDNamespace: cfg.Driver.ResolvedUUIDNamespace(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown driver backend %q", cfg.Driver.Backend)
	}
}

// buildVerifier constructs the SASL/GSSAPI verifier when Kerberos auth is
// enabled, returning the backing kerberos.Provider so the caller can close
// its keytab hot-reload goroutine on shutdown. Both returns are nil when
// Kerberos is disabled; dispatch.Server tolerates a nil Verifier since
// AuthRequired will also be false in that case.
func buildVerifier(cfg *config.Config) (gssapi.Verifier, *kerberos.Provider, error) {
	if !cfg.Kerberos.Enabled {
		return nil, nil, nil
	}
	provider, err := kerberos.NewProvider(&cfg.Kerberos)
	if err != nil {
		return nil, nil, err
	}
	return gssapi.NewKrb5Verifier(provider), provider, nil
}

// startDaemon forks a foreground virtd process, detaches it, and returns
// immediately, mirroring how the supervisor-less default deployment starts.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if data, err := os.ReadFile(pidPath); err == nil {
		var pid int
		if _, err := fmt.Sscanf(string(data), "%d", &pid); err == nil {
			if process, err := os.FindProcess(pid); err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("virtd is already running (PID %d)", pid)
				}
			}
		}
		_ = os.Remove(pidPath)
	}

	logPath := filepath.Join(stateDir, "virtd.log")
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFileHandle.Close() }()

	daemon := exec.Command(executable, daemonArgs...)
	daemon.Stdout = logFileHandle
	daemon.Stderr = logFileHandle
	daemon.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := daemon.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Printf("virtd started in background (PID %d)\n", daemon.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("Use 'virtd status' to check server status")

	return nil
}
