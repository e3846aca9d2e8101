package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match flow commands",
	}

	cmd.AddCommand(newMatchStartCmd())
	cmd.AddCommand(newMatchContentCmd())
	cmd.AddCommand(newMatchResultsCmd())

	return cmd
}

func newMatchStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [code]",
		Short: "Start a match (host only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(args)
			if err != nil {
				return err
			}
			if cfg.Session.ConnectionID == "" {
				return fmt.Errorf("no stored connection; join a room first")
			}

			req := map[string]string{"connection_id": cfg.Session.ConnectionID}
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/match", code), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Match started")
			return nil
		},
	}
}

func newMatchContentCmd() *cobra.Command {
	var secretHash string
	var hints []string

	cmd := &cobra.Command{
		Use:   "content [code]",
		Short: "Supply the round's secret hash and hints (host only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(args)
			if err != nil {
				return err
			}
			if cfg.Session.ConnectionID == "" {
				return fmt.Errorf("no stored connection; join a room first")
			}

			req := map[string]any{
				"connection_id": cfg.Session.ConnectionID,
				"secret_hash":   secretHash,
				"hints":         hints,
			}
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/match/content", code), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Round content supplied")
			return nil
		},
	}

	cmd.Flags().StringVar(&secretHash, "secret-hash", "", "Hash of the secret word (required)")
	cmd.Flags().StringArrayVar(&hints, "hint", nil, "Hint text, repeatable (required)")
	_ = cmd.MarkFlagRequired("secret-hash")
	_ = cmd.MarkFlagRequired("hint")

	return cmd
}

func newMatchResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results [code]",
		Short: "Fetch the room's scoreboard and leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(args)
			if err != nil {
				return err
			}

			var result Results
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/results", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGuessCmd() *cobra.Command {
	var elapsedMS int64

	cmd := &cobra.Command{
		Use:   "guess <word>",
		Short: "Submit a guess for the active round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(nil)
			if err != nil {
				return err
			}
			if cfg.Session.ConnectionID == "" {
				return fmt.Errorf("no stored connection; join a room first")
			}

			req := map[string]any{
				"connection_id": cfg.Session.ConnectionID,
				"guess":         args[0],
			}
			if cmd.Flags().Changed("elapsed-ms") {
				req["elapsed_ms"] = elapsedMS
			}

			var result GuessResult
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/guesses", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&elapsedMS, "elapsed-ms", 0, "Time from hint to guess in milliseconds")

	return cmd
}
