package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCardCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "card",
		Short: "Fetch the service's agent card",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := newServiceClient().Card(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(card)
			}

			fmt.Printf("%s %s\n", card.Name, card.Version)
			if card.Description != "" {
				fmt.Println(card.Description)
			}
			fmt.Printf("URL: %s\n", card.URL)
			if len(card.TrustModels) > 0 {
				fmt.Printf("Trust models: %s\n", strings.Join(card.TrustModels, ", "))
			}
			for _, pm := range card.Payments {
				fmt.Printf("Payments: %s to %s on %s\n", pm.Method, pm.Payee, pm.Network)
			}
			fmt.Printf("\n%-30s %-10s %s\n", "ENTRYPOINT", "STREAMING", "DESCRIPTION")
			fmt.Println(strings.Repeat("-", 70))
			for key, ep := range card.Entrypoints {
				streaming := "no"
				if ep.Streaming {
					streaming = "yes"
				}
				fmt.Printf("%-30s %-10s %s\n", key, streaming, ep.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw card as JSON")
	return cmd
}

func newEntrypointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entrypoints",
		Short: "List the service's entrypoints as a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newServiceClient().Manifest(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
}
