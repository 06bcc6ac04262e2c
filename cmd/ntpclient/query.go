package main

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/spf13/cobra"

	"github.com/KagamiChan/go-ntp-client/internal/sntp"
)

const timeFormat = "2006-01-02 15:04:05.000 MST"

func newQueryCmd() *cobra.Command {
	var (
		port      int
		timeoutMs int
		verify    bool
	)

	cmd := &cobra.Command{
		Use:   "query [server]",
		Short: "Perform a one-shot NTP query and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := sntp.DefaultServer
			if len(args) == 1 {
				server = args[0]
			}

			opts := sntp.QueryOptions{
				Port:    port,
				Timeout: time.Duration(timeoutMs) * time.Millisecond,
			}

			got, err := sntp.QueryWithOptions(server, opts)
			if err != nil {
				return err
			}

			fmt.Printf("%s\t%s\n", server, got.UTC().Format(timeFormat))

			if verify {
				// Cross-check against an independent implementation.
				ref, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: opts.Timeout, Port: port})
				if err != nil {
					fmt.Printf("verify: reference query failed: %v\n", err)
					return nil
				}
				delta := got.Sub(ref.Time)
				if delta < 0 {
					delta = -delta
				}
				fmt.Printf("verify: reference differs by %v\n", delta.Round(time.Millisecond))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", sntp.DefaultPort, "server UDP port")
	cmd.Flags().IntVarP(&timeoutMs, "timeout", "t", int(sntp.DefaultTimeout/time.Millisecond), "query timeout in milliseconds")
	cmd.Flags().BoolVar(&verify, "verify", false, "cross-check the result against a second NTP implementation")

	return cmd
}
