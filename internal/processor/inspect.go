package processor

import (
	"bytes"
	"image"

	"github.com/spf13/afero"

	"xlpress/internal/convert"
	"xlpress/internal/jxl"
	"xlpress/internal/raster"
	"xlpress/pkg/imgutil"
)

const (
	ActionEncode      = "encode"
	ActionPassThrough = "pass-through"
	ActionDecode      = "decode"
)

// inspect reports what a conversion would do with job without decoding any
// pixels or writing anything.
func (p *Processor) inspect(job Job) FileReport {
	report := FileReport{Kind: job.Kind}

	data, err := afero.ReadFile(p.fs, job.Path)
	if err != nil {
		report.Err = err
		return report
	}

	if job.Kind == imgutil.KindJXL {
		cfg, err := jxl.DecodeConfig(data)
		if err != nil {
			report.Err = err
			return report
		}
		report.Width, report.Height = cfg.Width, cfg.Height
		report.Action = ActionDecode
		return report
	}

	var cfg image.Config
	cfg, _, err = raster.DecodeConfig(data)
	if err != nil {
		report.Err = err
		return report
	}
	report.Width, report.Height = cfg.Width, cfg.Height
	report.Depth = convert.Classify(cfg.ColorModel)
	report.Action = ActionEncode
	if report.Depth == convert.DepthUnsupported {
		report.Action = ActionPassThrough
	}

	switch job.Kind {
	case imgutil.KindPNG:
		report.HasICC, _ = pngHasICC(bytes.NewReader(data))
	case imgutil.KindJPEG:
		report.HasICC, _ = jpegHasICC(bytes.NewReader(data))
	}

	switch job.Kind {
	case imgutil.KindJPEG, imgutil.KindPNG, imgutil.KindTIFF:
		analysis, err := analyzeExif(data)
		if err != nil {
			p.logger.Debug("exif unreadable", "file", job.Display, "err", err)
			break
		}
		report.Camera = analysis.Camera()
		report.Captured = analysis.Captured
	}

	return report
}
