package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lineserve/lineserve/pkg/client"
)

// Version is injected at build time
var Version = "dev"

func main() {
	if err := Execute(Version, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version string, args []string) error {
	var (
		addr       string
		useTLS     bool
		serverName string
		insecure   bool
		timeout    time.Duration
	)

	rootCmd := &cobra.Command{
		Use:     "lineserve-client QUERY",
		Short:   "Query a lineserve server for an exact full-line match",
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.Options{
				Address:    addr,
				UseTLS:     useTLS,
				ServerName: serverName,
				Insecure:   insecure,
				Timeout:    timeout,
			})
			resp, err := c.Query(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	flags := rootCmd.Flags()
	flags.StringVarP(&addr, "addr", "a", "127.0.0.1:44445", "Server address (host:port)")
	flags.BoolVar(&useTLS, "tls", false, "Connect over TLS")
	flags.StringVar(&serverName, "server-name", "", "TLS server name (defaults to the dialed host)")
	flags.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	flags.DurationVarP(&timeout, "timeout", "t", 5*time.Second, "Dial and exchange timeout")

	rootCmd.SetArgs(args)
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}
