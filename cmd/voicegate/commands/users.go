package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echoos/voicegate/pkg/voicegate"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage enrolled speakers (list, info, remove)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled speakers",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		users := env.auth.ListUsers()
		if len(users) == 0 {
			fmt.Println(dimStyle.Render("no enrolled users"))
			return nil
		}
		for _, u := range users {
			info, ok := env.auth.GetUserInfo(u)
			if !ok {
				continue
			}
			fmt.Printf("%s  %s, %d samples, enrolled %s\n",
				labelStyle.Render(u),
				info.Family(),
				len(info.Embeddings),
				info.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var usersInfoCmd = &cobra.Command{
	Use:   "info <username>",
	Short: "Show details for one speaker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		info, ok := env.auth.GetUserInfo(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", voicegate.ErrUnknownUser, args[0])
		}
		fmt.Println(labelStyle.Render(info.Username))
		fmt.Printf("  %s %s\n", labelStyle.Render("family:"), info.Family())
		fmt.Printf("  %s %d\n", labelStyle.Render("samples:"), len(info.Embeddings))
		fmt.Printf("  %s %s\n", labelStyle.Render("enrolled:"), info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  %s %s\n", labelStyle.Render("last used:"), info.LastUsedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  %s %d\n", labelStyle.Render("sessions:"), len(env.auth.Sessions().Sessions(info.Username)))
		return nil
	},
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove a speaker and all their sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if !env.auth.RemoveUser(cmd.Context(), args[0]) {
			return fmt.Errorf("%w: %s", voicegate.ErrUnknownUser, args[0])
		}
		fmt.Println(okStyle.Render("✓") + " removed " + labelStyle.Render(args[0]))
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersInfoCmd)
	usersCmd.AddCommand(usersRemoveCmd)
	rootCmd.AddCommand(usersCmd)
}
