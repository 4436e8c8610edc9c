package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/ledbridge/cmd"
	"github.com/smazurov/ledbridge/internal/api"
	"github.com/smazurov/ledbridge/internal/clicks"
	"github.com/smazurov/ledbridge/internal/config"
	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/events"
	"github.com/smazurov/ledbridge/internal/led"
	"github.com/smazurov/ledbridge/internal/logging"
	"github.com/smazurov/ledbridge/internal/metrics"
	"github.com/smazurov/ledbridge/internal/nats"
	"github.com/smazurov/ledbridge/internal/systemd"
	"github.com/smazurov/ledbridge/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Device settings
	DevicePath    string `help:"LED controller device node" default:"/dev/led_ctrl" toml:"device.path" env:"DEVICE_PATH"`
	DeviceEnabled bool   `help:"Talk to the device; when false every write reports unavailable" default:"true" toml:"device.enabled" env:"DEVICE_ENABLED"`

	// Monitor settings
	MonitorStatusInterval string `help:"LED status poll interval" default:"100ms" toml:"monitor.status_interval" env:"MONITOR_STATUS_INTERVAL"`
	MonitorClicksPath     string `help:"File reporting the physical click count (empty disables)" default:"/proc/coordinator" toml:"monitor.clicks_path" env:"MONITOR_CLICKS_PATH"`
	MonitorClicksInterval string `help:"Click counter poll interval" default:"1s" toml:"monitor.clicks_interval" env:"MONITOR_CLICKS_INTERVAL"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// NATS settings
	NATSEnabled bool   `help:"Run the embedded NATS server and control bridge" default:"true" toml:"nats.enabled" env:"NATS_ENABLED"`
	NATSPort    int    `help:"NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NATSHost    string `help:"NATS server listen address" default:"127.0.0.1" toml:"nats.host" env:"NATS_HOST"`

	// Metrics settings
	MetricsEnabled bool `help:"Serve Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDevice  string `help:"Device channel logging level" default:"info" toml:"logging.device" env:"LOGGING_DEVICE"`
	LoggingLED     string `help:"LED controller logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingNATS    string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingMonitor string `help:"Status and click monitor logging level" default:"info" toml:"logging.monitor" env:"LOGGING_MONITOR"`

	Version bool `help:"Print version and exit" default:"false"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if opts.Version {
			hooks.OnStart(func() {
				fmt.Println(version.String())
			})
			return
		}

		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"device":  opts.LoggingDevice,
				"led":     opts.LoggingLED,
				"api":     opts.LoggingAPI,
				"http":    opts.LoggingAPI,
				"nats":    opts.LoggingNATS,
				"monitor": opts.LoggingMonitor,
			},
		})

		logger := logging.GetLogger("main")
		logger.Info("Starting ledbridge", "version", version.String())

		// Create event bus for in-process event handling
		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEvent(entry))
		})

		channel := device.NewChannel(opts.DevicePath,
			device.WithLogger(logging.GetLogger("device")),
			device.WithObserver(metrics.DeviceObserver{}),
		)

		ledLogger := logging.GetLogger("led")
		controller := led.New(led.Config{Enabled: opts.DeviceEnabled, Path: channel.Path()}, channel, ledLogger)
		ledManager := led.NewManager(controller, eventBus, ledLogger)

		monitorLogger := logging.GetLogger("monitor")
		statusMonitor := led.NewMonitor(controller, eventBus,
			parseInterval(opts.MonitorStatusInterval, led.DefaultStatusInterval, monitorLogger), monitorLogger)

		var clickMonitor *clicks.Monitor
		if opts.MonitorClicksPath != "" {
			clickMonitor = clicks.NewMonitor(opts.MonitorClicksPath,
				parseInterval(opts.MonitorClicksInterval, clicks.DefaultInterval, monitorLogger),
				eventBus, monitorLogger, clicks.WithOnChange(metrics.SetPhysicalClicks))
		}

		unsubscribeCommands := metrics.SubscribeCommands(eventBus)

		var natsServer *nats.Server
		var natsBridge *nats.Bridge
		if opts.NATSEnabled {
			natsLogger := logging.GetLogger("nats")
			natsServer = nats.NewServer(nats.ServerOptions{
				Port:   opts.NATSPort,
				Host:   opts.NATSHost,
				Logger: natsLogger,
			})
			natsBridge = nats.NewBridge(natsServer.ClientURL(), ledManager, eventBus, natsLogger)
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			DevicePath:   channel.Path(),
			LED:          ledManager,
			States:       statusMonitor,
			EventBus:     eventBus,
		}
		if clickMonitor != nil {
			apiOpts.Clicks = clickMonitor
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = metrics.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		notifier := systemd.NewNotifier(logger)
		ctx, cancel := context.WithCancel(context.Background())

		var watcher *config.Watcher[logging.Config]

		hooks.OnStart(func() {
			statusMonitor.Start(ctx)
			if clickMonitor != nil {
				clickMonitor.Start(ctx)
			}

			if natsServer != nil {
				if startErr := natsServer.Start(); startErr != nil {
					logger.Error("Failed to start NATS server", "error", startErr)
					os.Exit(1)
				}
				if startErr := natsBridge.Start(); startErr != nil {
					logger.Error("Failed to start NATS bridge", "error", startErr)
					os.Exit(1)
				}
			}

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				w, watchErr := config.WatchLogging(opts.Config, logger)
				if watchErr != nil {
					logger.Warn("Config hot reload disabled", "error", watchErr)
				} else {
					watcher = w
				}
			}

			notifier.Ready(ctx)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			notifier.Stopping()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if stopErr := server.Stop(shutdownCtx); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}

			if natsBridge != nil {
				natsBridge.Stop()
			}
			if natsServer != nil {
				natsServer.Stop()
			}

			cancel()
			statusMonitor.Stop()
			if clickMonitor != nil {
				clickMonitor.Stop()
			}
			unsubscribeCommands()

			if closeErr := channel.Close(); closeErr != nil {
				logger.Warn("Error closing device", "error", closeErr)
			}
		})
	})

	cli.Root().Use = "ledbridge"
	cli.Root().Short = "HTTP and NATS bridge for the LED controller device"

	cli.Root().AddCommand(cmd.CreateSendCmd())
	cli.Root().AddCommand(cmd.CreateStatusCmd())

	cli.Run()
}

// parseInterval parses a duration option, falling back to def when the
// value is malformed or not positive.
func parseInterval(value string, def time.Duration, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("Invalid interval, using default", "value", value, "default", def)
		return def
	}
	return d
}
