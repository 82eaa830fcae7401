package commands

import (
	"strings"

	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

const commandModuleRoot = "coursegen.commands"

// CommandLogger scopes provider to coursegen.commands.<group>. Entries carry
// the group so compile runs can be filtered from other command traffic.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := strings.TrimSpace(group)
	if name == "" {
		name = "course"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":     "coursegen.commands",
		"command_group": name,
	})
}

// EnsureLogger returns logger, or a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
