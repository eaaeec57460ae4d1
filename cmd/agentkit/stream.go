package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/szaher/agentkit/agent"
)

func newStreamCmd() *cobra.Command {
	var inline, file string
	var raw bool

	cmd := &cobra.Command{
		Use:   "stream <entrypoint>",
		Short: "Stream an entrypoint run, printing envelopes as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(inline, file)
			if err != nil {
				return err
			}

			end, err := newServiceClient().Stream(cmd.Context(), args[0], input, callOptions(), func(env agent.Envelope) error {
				if raw {
					data, merr := json.Marshal(env)
					if merr != nil {
						return merr
					}
					fmt.Println(string(data))
					return nil
				}
				printEnvelope(env)
				return nil
			})
			if err != nil {
				explainPayment(err)
				return err
			}

			if end.Status == agent.RunFailed && end.Error != nil {
				return fmt.Errorf("run failed (%s): %s", end.Error.Code, end.Error.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inline, "input", "i", "", "Entrypoint input as inline JSON")
	cmd.Flags().StringVarP(&file, "input-file", "f", "", "Read entrypoint input from a JSON file (- for stdin)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print each envelope as one JSON line")
	return cmd
}

func printEnvelope(env agent.Envelope) {
	switch env.Kind {
	case agent.KindRunStart:
		fmt.Fprintf(os.Stderr, "run %s started\n", env.RunID)
	case agent.KindDelta:
		fmt.Print(env.Delta)
	case agent.KindText:
		fmt.Println(env.Text)
	case agent.KindControl:
		fmt.Fprintf(os.Stderr, "[control] %s\n", env.Control)
	case agent.KindError:
		fmt.Fprintf(os.Stderr, "[error] %s: %s\n", env.Code, env.Message)
	case agent.KindRunEnd:
		fmt.Println()
		fmt.Fprintf(os.Stderr, "run %s %s\n", env.RunID, env.Status)
	default:
		data, err := json.Marshal(env)
		if err == nil {
			fmt.Fprintln(os.Stderr, string(data))
		}
	}
}
