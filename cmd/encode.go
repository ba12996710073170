package cmd

import (
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"xlpress/internal/convert"
	"xlpress/internal/processor"
)

var (
	encodeOutputDir string
	encodeEffort    string
	encodeQuality   float32
	encodeLossless  bool
	encodeRecursive bool
	encodeProgress  bool
)

var encodeCmd = &cobra.Command{
	Use:     "encode [flags] <path>",
	Aliases: []string{"compress"},
	Short:   "Convert images to JPEG XL, keeping originals that would grow",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("output") && cfg.Output != "" {
			encodeOutputDir = cfg.Output
		}
		if !flags.Changed("effort") && cfg.Effort != "" {
			encodeEffort = cfg.Effort
		}
		if !flags.Changed("quality") && cfg.Quality != nil {
			encodeQuality = *cfg.Quality
		}
		if !flags.Changed("lossless") && cfg.Lossless != nil {
			encodeLossless = *cfg.Lossless
		}
		if !flags.Changed("recursive") && cfg.Recursive != nil {
			encodeRecursive = *cfg.Recursive
		}
		if !flags.Changed("progress") && cfg.Progress != nil {
			encodeProgress = *cfg.Progress
		}

		tier := convert.ParseEffort(encodeEffort)
		req := convert.Request{
			Effort:  int(tier),
			Quality: encodeQuality,
			Lossy:   !encodeLossless,
		}
		if err := req.Validate(); err != nil {
			return err
		}

		fsys := afero.NewOsFs()
		outputDir, err := prepareOutput(fsys, encodeOutputDir)
		if err != nil {
			return err
		}
		logger.Debug("encoding", "speed", tier, "quality", req.Quality, "lossy", req.Lossy)

		p := newProcessor(fsys, convert.DefaultOptimizePreset)
		summary, results, err := runBatch("xlpress: encode", p, args[0], processor.Options{
			Mode:      processor.ModeEncode,
			OutputDir: outputDir,
			Recursive: encodeRecursive,
			Request:   req,
		}, encodeProgress)
		if err != nil {
			return err
		}

		reportFailures(results)
		printSummary(summary, outputDir)
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutputDir, "output", "o", "output", "destination folder for converted files")
	encodeCmd.Flags().StringVarP(&encodeEffort, "effort", "e", strconv.Itoa(convert.DefaultEffort), "encoder effort 1-10 or tier name (lightning..glacier)")
	encodeCmd.Flags().Float32VarP(&encodeQuality, "quality", "q", convert.DefaultQuality, "distance 0.0-15.0; lower is higher fidelity and larger output")
	encodeCmd.Flags().BoolVar(&encodeLossless, "lossless", false, "encode losslessly and keep the original color profile (ignores --quality)")
	encodeCmd.Flags().BoolVarP(&encodeRecursive, "recursive", "r", false, "descend into subdirectories")
	encodeCmd.Flags().BoolVar(&encodeProgress, "progress", true, "show the progress view")

	rootCmd.AddCommand(encodeCmd)
}
