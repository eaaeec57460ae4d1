package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/szaher/agentkit/client"
)

// readInput parses the entrypoint input from --input, --input-file or
// stdin (in that order). An absent input is sent as null.
func readInput(inline, file string) (interface{}, error) {
	var raw []byte
	switch {
	case inline != "":
		raw = []byte(inline)
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = data
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		raw = data
	default:
		return nil, nil
	}

	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("input is not valid JSON: %w", err)
	}
	return input, nil
}

func explainPayment(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.PaymentRequired() {
		fmt.Fprintf(os.Stderr, "Payment required: %s on %s to %s (retry with --payment)\n",
			apiErr.Price, apiErr.Network, apiErr.PayTo)
	}
}

func newInvokeCmd() *cobra.Command {
	var inline, file string

	cmd := &cobra.Command{
		Use:   "invoke <entrypoint>",
		Short: "Invoke an entrypoint and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(inline, file)
			if err != nil {
				return err
			}

			result, err := newServiceClient().Invoke(cmd.Context(), args[0], input, callOptions())
			if err != nil {
				explainPayment(err)
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&inline, "input", "i", "", "Entrypoint input as inline JSON")
	cmd.Flags().StringVarP(&file, "input-file", "f", "", "Read entrypoint input from a JSON file (- for stdin)")
	return cmd
}
