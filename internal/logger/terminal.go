//go:build !windows && !linux

package logger

import "golang.org/x/sys/unix"

// isTerminal checks if the file descriptor is a terminal on BSD-derived
// Unix systems (darwin, freebsd, ...), which use TIOCGETA rather than
// Linux's TCGETS.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TIOCGETA)
	return err == nil
}
