package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/led"
	"github.com/smazurov/ledbridge/internal/logging"
)

// statusReader is satisfied by *device.Channel.
type statusReader interface {
	ReadStatus() string
}

// CreateStatusCmd creates the status command.
func CreateStatusCmd() *cobra.Command {
	var devicePath string
	var parsed bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Read the LED controller status line",
		Long: `Reads the status line from the device and prints it. ` +
			`When the device cannot be read the placeholder "unknown 0 0 0" is printed.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			initCLILogging(verbose)

			channel := device.NewChannel(devicePath, device.WithLogger(logging.GetLogger("device")))
			defer channel.Close()

			printStatus(cmd.OutOrStdout(), channel, parsed)
		},
	}

	cmd.Flags().StringVar(&devicePath, "device", device.DefaultPath, "LED controller device node")
	cmd.Flags().BoolVar(&parsed, "parsed", false, "Print the parsed fields instead of the raw line")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}

func printStatus(w io.Writer, r statusReader, parsed bool) {
	raw := r.ReadStatus()
	if !parsed {
		fmt.Fprintln(w, raw)
		return
	}

	st := led.ParseState(raw)
	fmt.Fprintf(w, "mode:      %s\n", led.DisplayMode(st.Mode))
	fmt.Fprintf(w, "level:     %d\n", st.Level)
	fmt.Fprintf(w, "delay_on:  %d\n", st.DelayOn)
	fmt.Fprintf(w, "delay_off: %d\n", st.DelayOff)
	fmt.Fprintf(w, "fallback:  %t\n", raw == device.FallbackStatus)
}
