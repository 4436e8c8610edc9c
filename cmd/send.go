package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/led"
	"github.com/smazurov/ledbridge/internal/logging"
	"github.com/smazurov/ledbridge/internal/nats"
)

// ledWriter is the part of led.Manager the send command needs.
type ledWriter interface {
	ApplyMode(source, name string) led.Result
	WriteCommand(source, command string) led.Result
}

// remoteWriter is the part of nats.CommandClient the send command needs.
type remoteWriter interface {
	SetMode(ctx context.Context, mode string) (nats.CommandReply, error)
	SendCommand(ctx context.Context, command string) (nats.CommandReply, error)
}

// CreateSendCmd creates the send command.
func CreateSendCmd() *cobra.Command {
	var devicePath string
	var natsURL string
	var raw bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "send <mode|command>",
		Short: "Write one command to the LED controller",
		Long: `Applies a mode (ON, OFF, BLINK, BREATH) or, with --raw, writes the argument unchanged. ` +
			`Prints the driver result: bytes written, or a negative error code. ` +
			`With --nats the request goes through a running daemon instead of the local device.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			initCLILogging(verbose)

			var code int
			if natsURL != "" {
				code = sendViaNATS(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), natsURL, args[0], raw)
			} else {
				code = sendLocal(cmd.OutOrStdout(), cmd.ErrOrStderr(), devicePath, args[0], raw)
			}
			if code < 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&devicePath, "device", device.DefaultPath, "LED controller device node")
	cmd.Flags().StringVar(&natsURL, "nats", "", "Send through the daemon at this NATS URL")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write the argument unchanged instead of parsing it as a mode")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}

func sendLocal(stdout, stderr io.Writer, devicePath, arg string, raw bool) int {
	logger := logging.GetLogger("led")
	channel := device.NewChannel(devicePath, device.WithLogger(logging.GetLogger("device")))
	defer channel.Close()

	controller := led.New(led.Config{Enabled: true, Path: channel.Path()}, channel, logger)
	return writeLocal(stdout, stderr, led.NewManager(controller, nil, logger), arg, raw)
}

func writeLocal(stdout, stderr io.Writer, w ledWriter, arg string, raw bool) int {
	var res led.Result
	if raw {
		res = w.WriteCommand(led.SourceCLI, arg)
	} else {
		res = w.ApplyMode(led.SourceCLI, arg)
	}

	if res.Err != nil {
		fmt.Fprintln(stderr, "error:", res.Err)
	}
	code := res.Code()
	fmt.Fprintln(stdout, code)
	return code
}

func sendViaNATS(ctx context.Context, stdout, stderr io.Writer, url, arg string, raw bool) int {
	client, err := nats.Dial(url, logging.GetLogger("nats"))
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		fmt.Fprintln(stdout, -1)
		return -1
	}
	defer client.Close()

	return writeRemote(ctx, stdout, stderr, client, arg, raw)
}

func writeRemote(ctx context.Context, stdout, stderr io.Writer, w remoteWriter, arg string, raw bool) int {
	if ctx == nil {
		ctx = context.Background()
	}

	var reply nats.CommandReply
	var err error
	if raw {
		reply, err = w.SendCommand(ctx, arg)
	} else {
		reply, err = w.SetMode(ctx, arg)
	}

	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if reply.Code >= 0 {
			// Transport failure: no reply from the daemon.
			reply.Code = -1
		}
	}
	fmt.Fprintln(stdout, reply.Code)
	return reply.Code
}

func initCLILogging(verbose bool) {
	cfg := logging.Config{Level: "warn", Format: "text"}
	if verbose {
		cfg.Level = "debug"
	}
	logging.Initialize(cfg)
}
