package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"xlpress/internal/convert"
	"xlpress/internal/jxl"
	"xlpress/internal/pngopt"
	"xlpress/internal/processor"
	"xlpress/internal/raster"
	"xlpress/internal/tui"
	"xlpress/internal/workpool"
)

func newProcessor(fsys afero.Fs, preset int) *processor.Processor {
	codec := jxl.New()
	engine := convert.New(fsys,
		convert.WithRasterDecoder(raster.New()),
		convert.WithEncoder(codec),
		convert.WithDecoder(codec),
		convert.WithOptimizer(pngopt.New()),
		convert.WithOptimizePreset(preset),
		convert.WithPool(workpool.New(rootThreads)),
		convert.WithLogger(logger),
	)
	return processor.New(fsys, engine, logger)
}

// prepareOutput resolves and creates the output directory.
func prepareOutput(fsys afero.Fs, dir string) (string, error) {
	if dir == "" {
		dir = "output"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := fsys.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return abs, nil
}

// runBatch drives the processor behind the progress view. With progress
// disabled the view is skipped and per-file results are logged instead.
func runBatch(title string, p *processor.Processor, root string, opts processor.Options, progress bool) (processor.Summary, []processor.Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return processor.Summary{}, nil, err
	}

	if !progress {
		summary, results, err := p.Run(context.Background(), absRoot, opts, nil)
		for _, res := range results {
			logger.Info(res.Outcome.Status.String(), "file", res.Display, "output", res.Outcome.OutputPath)
		}
		return summary, results, err
	}

	updates := make(chan processor.ProgressUpdate, 64)
	program := tea.NewProgram(tui.NewModel(title, updates))

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	summary, results, err := p.Run(context.Background(), absRoot, opts, updates)
	close(updates)
	<-uiDone
	return summary, results, err
}

func reportFailures(results []processor.Result) {
	for _, res := range results {
		if res.Outcome.Status == convert.StatusFailed {
			logger.Error("conversion failed", "file", res.Display, "err", res.Outcome.Err)
		}
	}
}

func printSummary(summary processor.Summary, outputDir string, extra ...tui.SummaryRow) {
	rows := []tui.SummaryRow{
		{Label: "Images found", Value: fmt.Sprintf("%d", summary.Total)},
		{Label: "Converted", Value: fmt.Sprintf("%d", summary.Written)},
		{Label: "Kept original", Value: fmt.Sprintf("%d", summary.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
		{Label: "Space saved", Value: tui.HumanBytes(summary.BytesSaved())},
	}
	rows = append(rows, extra...)
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
	fmt.Fprintf(os.Stdout, "Output written to: %s\n", outputDir)
}
