// Package main is the entry point for the agentkit CLI tool.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/agentkit/client"
)

// Version information set at build time.
var version = "0.1.0"

// Global flags.
var (
	serviceURL string
	payment    string
	timeout    time.Duration
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentkit",
		Short: "Inspect and call agentkit services",
		Long: `agentkit talks to services built with the agentkit toolkit:
it fetches agent cards and entrypoint manifests, invokes entrypoints,
and follows streaming runs over SSE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serviceURL, "url", "http://localhost:8080", "Base URL of the service")
	root.PersistentFlags().StringVar(&payment, "payment", "", "x402 payment proof sent as the X-Payment header")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout for non-streaming calls")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCardCmd())
	root.AddCommand(newEntrypointsCmd())
	root.AddCommand(newInvokeCmd())
	root.AddCommand(newStreamCmd())

	return root
}

func newServiceClient() *client.Client {
	return client.New(serviceURL, client.WithTimeout(timeout))
}

func callOptions() *client.CallOptions {
	if payment == "" {
		return nil
	}
	return &client.CallOptions{Payment: payment}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
