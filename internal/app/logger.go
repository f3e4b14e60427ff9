package app

import (
	"io"
	"strings"

	"github.com/hance08/teller/internal/config"
	"github.com/pterm/pterm"
)

var logLevels = map[string]pterm.LogLevel{
	"trace": pterm.LogLevelTrace,
	"debug": pterm.LogLevelDebug,
	"info":  pterm.LogLevelInfo,
	"warn":  pterm.LogLevelWarn,
	"error": pterm.LogLevelError,
}

// NewLogger builds the structured logger shared by every component.
func NewLogger(cfg config.LogConfig, w io.Writer) *pterm.Logger {
	level, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		level = pterm.LogLevelInfo
	}

	formatter := pterm.LogFormatterColorful
	if strings.EqualFold(cfg.Format, "json") {
		formatter = pterm.LogFormatterJSON
	}

	return pterm.DefaultLogger.
		WithLevel(level).
		WithFormatter(formatter).
		WithWriter(w).
		WithTime(true)
}
