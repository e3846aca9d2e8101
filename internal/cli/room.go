package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name, playerID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": name}
			if playerID != "" {
				req["player_id"] = playerID
			}

			var result RoomResult
			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(Session{
				RoomCode:     result.Room.RoomCode,
				ConnectionID: result.ConnectionID,
				PlayerID:     playerID,
			}); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&playerID, "player-id", "", "Stable player identity")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [code]",
		Short: "Get room details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode(args)
			if err != nil {
				return err
			}

			var result Room
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var name, playerID string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{"display_name": name}
			if playerID != "" {
				req["player_id"] = playerID
			}

			var result RoomResult
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/join", code), req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(Session{
				RoomCode:     result.Room.RoomCode,
				ConnectionID: result.ConnectionID,
				PlayerID:     playerID,
			}); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&playerID, "player-id", "", "Stable player identity")

	return cmd
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave [code]",
		Short: "Leave a room",
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
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/leave", code), req, nil); err != nil {
				return err
			}

			if err := cfg.ClearSession(); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Left room %s", code))
			return nil
		},
	}
}

// roomCode resolves the room code from args or the stored session
func roomCode(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Session.RoomCode != "" {
		return cfg.Session.RoomCode, nil
	}
	return "", fmt.Errorf("no room code given and no stored session")
}
