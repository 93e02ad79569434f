package app

import (
	"strings"

	"github.com/charlesng35/botspace/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level, defaulting to info.
// Development servers get the console encoder.
func ConfigureLogging(server ServerConfig) error {
	level := strings.TrimSpace(server.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, server.Development())
}
