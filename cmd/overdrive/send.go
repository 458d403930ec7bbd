package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/overdrive/internal/adapters/udp"
	"github.com/bft-labs/overdrive/internal/domain"
)

type sendOptions struct {
	addr     string
	port     int
	repeat   int
	interval time.Duration
}

func newSendCmd() *cobra.Command {
	opts := sendOptions{
		addr:     "127.0.0.1:7450",
		port:     int(domain.PortOverride),
		repeat:   1,
		interval: 20 * time.Millisecond,
	}

	cmd := &cobra.Command{
		Use:   "send M1 M2 M3 M4",
		Short: "Send one override command (four raw motor values)",
		Long: `Encode four unsigned 16-bit motor values and send them as override packets.

Commands go stale after timeout-ms on the receiving side, so keep a motor
spinning by repeating: --repeat 0 sends until interrupted.`,
		Example: "  overdrive send 1000 2000 3000 4000\n  overdrive send 0 0 0 30000 --repeat 100 --interval 10ms",
		Args:    cobra.ExactArgs(domain.NumMotors),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCommand(args)
			if err != nil {
				return err
			}
			n, err := sendCommand(cmd.Context(), opts, c)
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "sent %v to %s (%d packets)\n", c, opts.addr, n)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "receiver UDP address")
	cmd.Flags().IntVar(&opts.port, "port", opts.port, "link port of the override channel")
	cmd.Flags().IntVar(&opts.repeat, "repeat", opts.repeat, "number of packets to send (0 = until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", opts.interval, "delay between repeated packets")
	return cmd
}

func parseCommand(args []string) (domain.Command, error) {
	var c domain.Command
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 16)
		if err != nil {
			return c, fmt.Errorf("%s: %w", domain.AllMotors()[i], err)
		}
		c[i] = uint16(v)
	}
	return c, nil
}

// sendCommand sends c opts.repeat times and returns how many packets went out.
func sendCommand(ctx context.Context, opts sendOptions, c domain.Command) (int, error) {
	if opts.port < 0 || opts.port > 0x0F {
		return 0, fmt.Errorf("port %d out of range 0-15", opts.port)
	}
	client, err := udp.Dial(opts.addr)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		if err := client.SendCommand(domain.Port(opts.port), c); err != nil {
			return n - 1, err
		}
		if opts.repeat > 0 && n >= opts.repeat {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return n, nil
		case <-ticker.C:
		}
	}
}
