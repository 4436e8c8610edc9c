// Package logging provides slog loggers with per-module levels.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"device": "debug",
//		},
//	})
//
//	logger := logging.GetLogger("device")
//	logger.Warn("Seek failed, reopening", "path", path, "error", err)
//
// Records go to stdout (text or json), to the systemd journal when journald is
// reachable, and to an in-memory ring buffer that backs the log stream API.
// Module levels live in slog.LevelVars, so UpdateLevels can change them at
// runtime without replacing loggers already handed out.
//
// On a systemd host:
//
//	journalctl -t ledbridge -f
//	journalctl -t ledbridge MODULE=device -p warning
//
// TOML form:
//
//	[logging]
//	level = "info"
//	format = "text"
//	device = "debug"
//	api = "warn"
package logging
