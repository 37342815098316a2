package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "start", "status", "logs", "config"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}

	for _, unwanted := range []string{"backup", "restore", "migrate", "user", "group"} {
		assert.False(t, names[unwanted], "unexpected subcommand %q registered", unwanted)
	}
}

func TestGetConfigFile_DefaultsEmpty(t *testing.T) {
	assert.Equal(t, "", GetConfigFile())
}
