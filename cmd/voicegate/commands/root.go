package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/echoos/voicegate/cmd/voicegate/internal/config"
)

var (
	// Global flags
	verbose    bool
	inputPath  string
	identifier string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voicegate",
	Short: "Local voice-biometric authentication",
	Long: `voicegate - voice-biometric login for a local machine.

Speakers enroll with a few short voice samples; afterwards a single
spoken phrase authenticates them and opens a session. Repeated failed
attempts temporarily lock the seat.

Audio is read as raw PCM16 mono from a file or stdin (--input -), so any
recorder can feed it:

  arecord -f S16_LE -r 16000 -c 1 -d 5 | voicegate authenticate --input -

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/voicegate/
  Linux:   ~/.config/voicegate/
  Windows: %AppData%/voicegate/

Examples:
  # Enroll a speaker from three recorded samples
  voicegate register alice --input samples.pcm

  # Authenticate and open a session
  voicegate authenticate --input -

  # Inspect enrollment and sessions
  voicegate users list
  voicegate sessions list
  voicegate sessions sweep`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "-", "raw PCM16 mono audio source ('-' for stdin)")
	rootCmd.PersistentFlags().StringVar(&identifier, "identifier", "", "client identifier for lockout bookkeeping")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		// Commands that need config get a clear error via GetConfig();
		// commands like 'voicegate version' keep working.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
