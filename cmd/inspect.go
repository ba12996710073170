package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"xlpress/internal/processor"
	"xlpress/internal/tui"
)

var (
	inspectRecursive bool
	inspectProgress  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Report what encode or decode would do without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("recursive") && cfg.Recursive != nil {
			inspectRecursive = *cfg.Recursive
		}
		if !cmd.Flags().Changed("progress") && cfg.Progress != nil {
			inspectProgress = *cfg.Progress
		}

		p := newProcessor(afero.NewOsFs(), 0)
		_, results, err := runBatch("xlpress: inspect", p, args[0], processor.Options{
			Mode:      processor.ModeInspect,
			Recursive: inspectRecursive,
		}, inspectProgress)
		if err != nil {
			return err
		}

		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s\n", inspectFileStyle.Render(res.Display))
			report := res.Report
			if report == nil {
				continue
			}
			if report.Err != nil {
				printField("error", inspectWarnStyle.Render(report.Err.Error()))
				continue
			}
			printField("format", report.Kind.String())
			printField("size", fmt.Sprintf("%dx%d", report.Width, report.Height))
			if report.Action != processor.ActionDecode {
				printField("depth", report.Depth.String())
			}
			action := inspectActionStyle.Render(report.Action)
			if report.Action == processor.ActionPassThrough {
				action = inspectWarnStyle.Render(report.Action)
			}
			printField("action", action)
			if report.HasICC {
				printField("icc", "embedded")
			}
			if report.Camera != "" {
				printField("camera", report.Camera)
			}
			if report.Captured != "" {
				printField("captured", report.Captured)
			}
		}
		return nil
	},
}

func printField(label, value string) {
	fmt.Fprintf(os.Stdout, "  %s %s %s\n",
		inspectBulletStyle.Render("-"),
		inspectLabelStyle.Render(label+":"),
		inspectValueStyle.Render(value),
	)
}

var (
	inspectFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectLabelStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectActionStyle = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	inspectWarnStyle   = lipgloss.NewStyle().Foreground(tui.ColorWarn)
	inspectBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	inspectCmd.Flags().BoolVarP(&inspectRecursive, "recursive", "r", false, "descend into subdirectories")
	inspectCmd.Flags().BoolVar(&inspectProgress, "progress", true, "show the progress view")

	rootCmd.AddCommand(inspectCmd)
}
