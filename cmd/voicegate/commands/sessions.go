package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and clean up sessions (list, sweep)",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list [username]",
	Short: "List sessions, optionally for one user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		users := env.auth.ListUsers()
		if len(args) == 1 {
			users = []string{args[0]}
		}

		now := time.Now()
		var any bool
		for _, u := range users {
			for _, s := range env.auth.Sessions().Sessions(u) {
				any = true
				state := okStyle.Render("active")
				if !now.Before(s.ExpiresAt) {
					state = dimStyle.Render("expired")
				}
				fmt.Printf("%s  %s  %s  expires %s\n",
					labelStyle.Render(s.Username), s.ID, state,
					s.ExpiresAt.Format("15:04:05"))
			}
		}
		if !any {
			fmt.Println(dimStyle.Render("no sessions"))
		}
		return nil
	},
}

var sessionsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		n := env.auth.CleanupExpiredSessions(cmd.Context())
		fmt.Printf("%s swept %d expired session(s)\n", okStyle.Render("✓"), n)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsSweepCmd)
	rootCmd.AddCommand(sessionsCmd)
}
