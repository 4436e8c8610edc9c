package led

import (
	"log/slog"
	"os"
)

// Config selects the controller implementation.
type Config struct {
	Enabled bool
	Path    string
}

// New creates a controller for dev. A disabled config, or a nil dev, gets the
// no-op controller. A missing device node is only logged: the driver may
// create it later and the channel opens lazily.
func New(cfg Config, dev Device, logger *slog.Logger) Controller {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.Enabled || dev == nil {
		logger.Info("LED device disabled, using no-op controller", "path", cfg.Path)
		return newNoop(logger)
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		logger.Warn("LED device node not present yet", "path", cfg.Path, "error", err)
	} else {
		logger.Info("Using LED device", "path", cfg.Path)
	}
	return newDriver(dev, logger)
}
