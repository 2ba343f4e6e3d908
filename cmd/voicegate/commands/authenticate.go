package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/voicegate"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Verify a voice sample and open a session",
	Long: `Read one voice sample from the audio input, match it against all
enrolled speakers, and open a session on success.

Examples:
  arecord -f S16_LE -r 16000 -c 1 -d 5 | voicegate authenticate --input -
  voicegate authenticate --input sample.pcm --identifier kiosk-2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		res := env.auth.Authenticate(cmd.Context(), identifier)
		switch res.Reason {
		case voicegate.ReasonNone:
			fmt.Println(okStyle.Render("✓ access granted"))
			fmt.Printf("  %s %s\n", labelStyle.Render("user:"), res.Username)
			fmt.Printf("  %s %.3f (threshold %.2f)\n", labelStyle.Render("score:"),
				feature.DisplayScore(res.Family, res.Score), feature.DisplayThreshold(res.Family))
			fmt.Printf("  %s %s\n", labelStyle.Render("session:"), res.Session.ID)
			fmt.Printf("  %s %s\n", labelStyle.Render("expires:"), res.Session.ExpiresAt.Format("15:04:05"))
			return nil

		case voicegate.ReasonLockedOut:
			fmt.Println(errStyle.Render("✗ locked out"))
			return fmt.Errorf("locked out, retry in %s", res.RetryAfter.Round(time.Second))

		case voicegate.ReasonNoUsers:
			fmt.Println(errStyle.Render("✗ no enrolled users"))
			return fmt.Errorf("no enrolled users; run 'voicegate register' first")

		case voicegate.ReasonSampleExtraction:
			fmt.Println(errStyle.Render("✗ could not process audio"))
			return fmt.Errorf("could not process the audio sample")

		default:
			fmt.Println(errStyle.Render("✗ access denied"))
			fmt.Printf("  %s %.3f (threshold %.2f)\n", labelStyle.Render("best score:"),
				feature.DisplayScore(res.Family, res.Score), feature.DisplayThreshold(res.Family))
			fmt.Printf("  %s %d\n", labelStyle.Render("attempts left:"), res.RemainingAttempts)
			return fmt.Errorf("voice not recognized")
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "End all sessions for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		n := env.auth.Sessions().InvalidateAll(cmd.Context(), username)
		if n == 0 {
			fmt.Println(dimStyle.Render("no active sessions for " + username))
			return nil
		}
		fmt.Printf("%s ended %d session(s) for %s\n", okStyle.Render("✓"), n, labelStyle.Render(username))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show users with a currently valid session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		var any bool
		for _, u := range env.auth.ListUsers() {
			if env.auth.Sessions().IsValid(u) {
				fmt.Println(labelStyle.Render(u))
				any = true
			}
		}
		if !any {
			fmt.Println(dimStyle.Render("no active sessions"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
