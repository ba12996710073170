package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootLogLevel   string
	rootThreads    int

	cfg    fileConfig
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "xlpress",
	Short: "xlpress - batch convert images to and from JPEG XL",
	Long: "xlpress converts PNG, JPEG, WebP, GIF, BMP and TIFF images to JPEG XL and back.\n" +
		"A converted file is only kept when it is smaller than the original; otherwise the original is copied unchanged.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(rootConfigPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = loaded

		levelName := rootLogLevel
		if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
			levelName = cfg.LogLevel
		}
		level, err := log.ParseLevel(levelName)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", levelName, err)
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "xlpress"})

		if !cmd.Flags().Changed("threads") && cfg.Threads != nil {
			rootThreads = *cfg.Threads
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", defaultConfigFile, "YAML file with default settings")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVarP(&rootThreads, "threads", "t", 0, "codec worker threads per image (0 = all CPUs)")
}
