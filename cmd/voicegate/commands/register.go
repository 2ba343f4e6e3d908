package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerForce bool

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Enroll a speaker from voice samples",
	Long: `Enroll a new speaker. Three voice samples are read from the audio
input; at least two must yield a usable voice signature.

Examples:
  # Three 5-second samples, concatenated raw PCM16 mono 16 kHz
  voicegate register alice --input samples.pcm

  # Pipe from a recorder
  arecord -f S16_LE -r 16000 -c 1 -d 15 | voicegate register alice --input -

  # Replace an existing enrollment
  voicegate register alice --force --input samples.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		env, err := openGate(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if registerForce {
			err = env.auth.Reregister(cmd.Context(), username)
		} else {
			err = env.auth.Register(cmd.Context(), username)
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", username, err)
		}

		fmt.Println(okStyle.Render("✓") + " enrolled " + labelStyle.Render(username))
		return nil
	},
}

func init() {
	registerCmd.Flags().BoolVar(&registerForce, "force", false, "replace an existing enrollment")
	rootCmd.AddCommand(registerCmd)
}
