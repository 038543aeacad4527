package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"temper/internal/config"
	"temper/internal/logging"
)

var (
	// Global flags
	verbose  bool
	homeFlag string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	home   string
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "temper",
	Short: "temper - run parameterized snippets from the command line",
	Long: `temper runs small, parameterized snippets: pipe data in, pass
parameters as --name=value flags, and get a single textual result back.

Snippets live as frontmatter files in ~/.temper/snippets or in the remote
gallery. Only snippets with the "go" language tag are executable; other
languages can be stored, listed and searched.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		home = homeFlag
		if home == "" {
			home, err = config.HomeDir()
			if err != nil {
				return err
			}
		}

		cfg, err = config.Load(home)
		if err != nil {
			return err
		}

		if err := logging.Initialize(home); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Boot("temper starting, home=%s", home)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "temper home directory (default ~/.temper, $TEMPER_HOME)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
