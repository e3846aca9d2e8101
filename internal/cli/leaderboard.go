package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardRoomCmd())
	cmd.AddCommand(newLeaderboardGlobalCmd())
	cmd.AddCommand(newLeaderboardPlayerCmd())

	return cmd
}

func newLeaderboardRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "room [code]",
		Short: "Show the room-scoped leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(args)
			if err != nil {
				return err
			}

			var result []LeaderboardEntry
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/leaderboard", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaderboardGlobalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show the all-time global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []GlobalStats
			if err := client.Get("/api/v1/leaderboard", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaderboardPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <player-id>",
		Short: "Show one player's all-time stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GlobalStats
			if err := client.Get(fmt.Sprintf("/api/v1/players/%s/stats", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
