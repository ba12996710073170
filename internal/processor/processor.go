package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"xlpress/internal/convert"
	"xlpress/pkg/imgutil"
)

type Processor struct {
	fs     afero.Fs
	engine *convert.Engine
	logger *log.Logger
}

func New(fsys afero.Fs, engine *convert.Engine, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Processor{fs: fsys, engine: engine, logger: logger}
}

// Run converts every matching file under root, one at a time, in lexical
// order. Per-file failures are counted in the summary and never stop the
// batch; only enumeration errors and cancellation are returned.
func (p *Processor) Run(ctx context.Context, root string, opts Options, updates chan<- ProgressUpdate) (Summary, []Result, error) {
	summary := Summary{}

	jobs, err := p.collect(root, opts)
	if err != nil {
		return summary, nil, err
	}
	summary.Total = len(jobs)
	p.logger.Info("images found", "count", len(jobs), "root", root)
	send(updates, ProgressUpdate{TotalDelta: len(jobs)})

	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, results, err
		}

		res := Result{Path: job.Path, Display: job.Display}
		switch opts.Mode {
		case ModeEncode:
			res.Outcome = p.engine.Compress(ctx, job.Path, opts.OutputDir, opts.Request)
		case ModeDecode:
			res.Outcome = p.engine.Decompress(ctx, job.Path, opts.OutputDir)
		case ModeInspect:
			report := p.inspect(job)
			res.Report = &report
			res.Outcome = convert.Outcome{Source: job.Path, Status: convert.StatusSkippedFallback, Err: report.Err}
			if report.Err != nil {
				res.Outcome.Status = convert.StatusFailed
			}
		default:
			return summary, results, fmt.Errorf("unknown mode")
		}

		update := ProgressUpdate{Current: job.Display}
		out := res.Outcome
		switch out.Status {
		case convert.StatusWritten:
			summary.Written++
			update.WrittenDelta = 1
		case convert.StatusSkippedFallback:
			summary.Skipped++
			update.SkippedDelta = 1
		default:
			summary.Failed++
			update.FailedDelta = 1
			p.logger.Debug("conversion failed", "file", job.Display, "err", out.Err)
		}
		if opts.Mode != ModeInspect && out.Status != convert.StatusFailed {
			summary.BytesIn += out.OriginalSize
			summary.BytesOut += out.FinalSize
			update.BytesSavedDelta = out.OriginalSize - out.FinalSize
		}
		send(updates, update)
		results = append(results, res)
	}

	return summary, results, nil
}

func send(updates chan<- ProgressUpdate, update ProgressUpdate) {
	if updates != nil {
		updates <- update
	}
}

// collect lists the files under root that the mode can handle. A root that
// is itself a file is taken as-is when its kind matches.
func (p *Processor) collect(root string, opts Options) ([]Job, error) {
	info, err := p.fs.Stat(root)
	if err != nil {
		return nil, err
	}

	want := func(kind imgutil.Kind) bool {
		switch opts.Mode {
		case ModeEncode:
			return kind.IsRaster()
		case ModeDecode:
			return kind == imgutil.KindJXL
		default:
			return kind != imgutil.KindUnknown
		}
	}

	if !info.IsDir() {
		kind := p.sniff(root)
		if !want(kind) {
			return nil, fmt.Errorf("%s: not a supported %s input", root, modeNoun(opts.Mode))
		}
		base := filepath.Base(root)
		return []Job{{Path: root, RelPath: base, Display: base, Kind: kind}}, nil
	}

	var outputClean string
	if opts.OutputDir != "" {
		outputClean = filepath.Clean(opts.OutputDir)
	}
	rootClean := filepath.Clean(root)

	var jobs []Job
	err = afero.Walk(p.fs, root, func(path string, fi fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			clean := filepath.Clean(path)
			if clean == rootClean {
				return nil
			}
			if !opts.Recursive || (outputClean != "" && isWithin(clean, outputClean)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		kind := p.sniff(path)
		if !want(kind) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		jobs = append(jobs, Job{Path: path, RelPath: rel, Display: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].RelPath < jobs[j].RelPath })
	return jobs, nil
}

// sniff prefers magic bytes and falls back to the extension for files too
// short or unreadable to sniff, so they still reach the engine and fail there.
func (p *Processor) sniff(path string) imgutil.Kind {
	kind, err := imgutil.SniffFile(p.fs, path)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.logger.Debug("sniff failed", "file", path, "err", err)
		}
		return imgutil.KindForExt(path)
	}
	if kind == imgutil.KindUnknown {
		return imgutil.KindForExt(path)
	}
	return kind
}

func modeNoun(mode Mode) string {
	switch mode {
	case ModeEncode:
		return "raster"
	case ModeDecode:
		return "JPEG XL"
	default:
		return "image"
	}
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
