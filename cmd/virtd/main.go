// Command virtd is a libvirt-compatible RPC dispatch daemon: it accepts
// connections, authenticates them, and drives a driver.Facade through the
// same wire protocol and procedure catalogue a real libvirtd speaks.
package main

import (
	"fmt"
	"os"

	"github.com/go-virt/virtd/cmd/virtd/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
