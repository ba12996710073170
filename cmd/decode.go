package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"xlpress/internal/convert"
	"xlpress/internal/pngopt"
	"xlpress/internal/processor"
)

var (
	decodeOutputDir string
	decodePreset    int
	decodeRecursive bool
	decodeProgress  bool
)

var decodeCmd = &cobra.Command{
	Use:     "decode [flags] <path>",
	Aliases: []string{"decompress"},
	Short:   "Convert JPEG XL files back to optimized PNG",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("output") && cfg.Output != "" {
			decodeOutputDir = cfg.Output
		}
		if !flags.Changed("preset") && cfg.Preset != nil {
			decodePreset = *cfg.Preset
		}
		if !flags.Changed("recursive") && cfg.Recursive != nil {
			decodeRecursive = *cfg.Recursive
		}
		if !flags.Changed("progress") && cfg.Progress != nil {
			decodeProgress = *cfg.Progress
		}
		if decodePreset < pngopt.MinPreset || decodePreset > pngopt.MaxPreset {
			return fmt.Errorf("--preset must be between %d and %d", pngopt.MinPreset, pngopt.MaxPreset)
		}

		fsys := afero.NewOsFs()
		outputDir, err := prepareOutput(fsys, decodeOutputDir)
		if err != nil {
			return err
		}

		p := newProcessor(fsys, decodePreset)
		summary, results, err := runBatch("xlpress: decode", p, args[0], processor.Options{
			Mode:      processor.ModeDecode,
			OutputDir: outputDir,
			Recursive: decodeRecursive,
		}, decodeProgress)
		if err != nil {
			return err
		}

		reportFailures(results)
		printSummary(summary, outputDir)
		return nil
	},
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutputDir, "output", "o", "output", "destination folder for PNG files")
	decodeCmd.Flags().IntVarP(&decodePreset, "preset", "p", convert.DefaultOptimizePreset, "PNG optimization level 0-6")
	decodeCmd.Flags().BoolVarP(&decodeRecursive, "recursive", "r", false, "descend into subdirectories")
	decodeCmd.Flags().BoolVar(&decodeProgress, "progress", true, "show the progress view")

	rootCmd.AddCommand(decodeCmd)
}
