package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Decompress decodes the JPEG XL file src into outDir/<stem>.png. Once the
// raster has been rebuilt some PNG always lands: if the optimizer fails the
// unoptimized intermediate is moved into place instead.
func (e *Engine) Decompress(ctx context.Context, src, outDir string) Outcome {
	out := Outcome{Source: src}
	logger := e.logger.With("file", filepath.Base(src))

	data, err := afero.ReadFile(e.fs, src)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrDecode, err))
	}
	out.OriginalSize = int64(len(data))

	if e.decoder == nil {
		return failed(out, fmt.Errorf("%w: engine has no decoder configured", ErrDecode))
	}

	buf, err := e.decoder.Decode(ctx, data, e.pool)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrDecode, err))
	}

	pix, err := Normalize(ctx, buf, e.pool)
	if err != nil {
		return failed(out, err)
	}
	raster, err := NewRGBRaster(buf.Width, buf.Height, pix)
	if err != nil {
		return failed(out, err)
	}

	tmpPath, err := e.writeIntermediate(outDir, raster)
	if err != nil {
		return failed(out, err)
	}

	dest := filepath.Join(outDir, Stem(src)+RasterExt)
	out.Optimized = true
	if err := e.optimize(tmpPath, dest); err != nil {
		logger.Warn("optimizer failed, keeping unoptimized output", "err", err)
		out.Optimized = false
		if err := replaceFile(e.fs, tmpPath, dest); err != nil {
			_ = e.fs.Remove(tmpPath)
			return failed(out, fmt.Errorf("%w: %w", ErrWrite, err))
		}
	} else {
		_ = e.fs.Remove(tmpPath)
	}

	info, err := e.fs.Stat(dest)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrWrite, err))
	}

	logger.Debug("decoded", "kind", buf.Kind, "channels", buf.Channels,
		"width", buf.Width, "height", buf.Height, "optimized", out.Optimized)

	out.Status = StatusWritten
	out.OutputPath = dest
	out.FinalSize = info.Size()
	return out
}

func (e *Engine) optimize(src, dst string) error {
	if e.optimizer == nil {
		return fmt.Errorf("%w: no optimizer configured", ErrOptimize)
	}
	if err := e.optimizer.Optimize(e.fs, src, dst, e.preset); err != nil {
		return fmt.Errorf("%w: %w", ErrOptimize, err)
	}
	return nil
}

func (e *Engine) writeIntermediate(outDir string, raster *RGBRaster) (string, error) {
	tmpFile, err := afero.TempFile(e.fs, outDir, "xlpress-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	name := tmpFile.Name()

	bw := bufio.NewWriter(tmpFile)
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(bw, raster.Image()); err != nil {
		_ = tmpFile.Close()
		_ = e.fs.Remove(name)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmpFile.Close()
		_ = e.fs.Remove(name)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = e.fs.Remove(name)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return name, nil
}

func replaceFile(fsys afero.Fs, tmpPath, destPath string) error {
	if err := fsys.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := fsys.Remove(destPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return fsys.Rename(tmpPath, destPath)
}
