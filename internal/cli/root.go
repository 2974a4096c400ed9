package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"semsim/config"
	"semsim/internal/engine"
	"semsim/internal/logging"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	logLevel  string
	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "semsim",
	Short: "Semantic similarity and nearest-anchor classification",
	Long: `semsim embeds text with a configurable provider and scores it by cosine
similarity: pairwise comparison, nearest-anchor classification against
labelled examples, and low-dimensional projection to spot drift.

Example usage:
  semsim classify "I fully back this plan"      # Classify with configured anchors
  semsim compare "a cat" "a kitten" "a lorry"    # Similarity matrix
  semsim drift ./before ./after                   # Project two corpora
  semsim answer -q "Who wrote it?" -c notes.txt   # Extractive answer

Exit status is 2 when the input itself is unusable (mismatched dimensions,
degenerate vectors, invalid anchors, too few samples) and 1 otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := config.LoadDotEnv(rootDir); err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logCfg := logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		}
		if logLevel != "" {
			logCfg.Level = logLevel
		}
		logger, logCloser, err = logging.Init(logCfg)
		if err != nil {
			return err
		}

		logger.Debug().Str("dir", rootDir).Str("provider", cfg.Embedding.Provider).Msg("loaded configuration")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if engine.IsInputError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semsim.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
