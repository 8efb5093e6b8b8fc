package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

// RenderOptions describes one GIF render.
type RenderOptions struct {
	InputPath   string
	OutputPath  string
	PalettePath string
	StartTime   float64
	EndTime     float64
	Settings    types.TierSettings
	Caption     string
	Style       types.CaptionStyle

	// OnProgress receives 0-100. Values are monotonic and the final
	// callback on success is always 100.
	OnProgress func(pct int)
}

// RenderGif produces a looping GIF with the two-pass palette pipeline:
// pass one computes an optimized palette over the exact output frames,
// pass two applies it with dithering.
func (i *Invoker) RenderGif(ctx context.Context, opts RenderOptions) error {
	clipDuration := opts.EndTime - opts.StartTime
	if clipDuration <= 0 {
		return apperrors.New(apperrors.CodeInvalidParams, "Clip end must be after start")
	}

	tracker := newProgressTracker(clipDuration, opts.OnProgress)

	paletteArgs := []string{
		"-y",
		"-ss", formatSeconds(opts.StartTime),
		"-t", formatSeconds(clipDuration),
		"-i", opts.InputPath,
		"-vf", PaletteGenFilter(opts.Settings, opts.Caption, opts.Style),
		opts.PalettePath,
	}
	if err := i.runRenderPass(ctx, paletteArgs, tracker.passOne); err != nil {
		return err
	}

	renderArgs := []string{
		"-y",
		"-ss", formatSeconds(opts.StartTime),
		"-t", formatSeconds(clipDuration),
		"-i", opts.InputPath,
		"-i", opts.PalettePath,
		"-filter_complex", PaletteUseFilter(opts.Settings, opts.Caption, opts.Style),
		"-loop", "0",
		// Hold the last frame before the loop restarts (centiseconds).
		"-final_delay", "500",
		opts.OutputPath,
	}
	if err := i.runRenderPass(ctx, renderArgs, tracker.passTwo); err != nil {
		return err
	}

	info, err := os.Stat(opts.OutputPath)
	if err != nil || info.Size() == 0 {
		return apperrors.New(apperrors.CodeOutputMissing, "Render produced no output file")
	}

	tracker.finish()
	return nil
}

func (i *Invoker) runRenderPass(ctx context.Context, args []string, onLine func(string)) error {
	tail, err := i.Run(ctx, args, onLine)
	if err == nil {
		return nil
	}

	detail := strings.Join(tail, "\n")
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.WrapWithDetail(apperrors.CodeRenderTimeout, "Clip render timed out", detail, err)
	case errors.Is(ctx.Err(), context.Canceled):
		return apperrors.WrapWithDetail(apperrors.CodeRenderCancelled, "Clip render cancelled", detail, err)
	default:
		return apperrors.WrapWithDetail(apperrors.CodeRenderFailed, "Clip render failed", detail, err)
	}
}

// progressTracker maps per-pass ffmpeg time= output onto a single
// 0-100 scale: pass one covers 0-50, pass two 50-99. Reported values
// never go backwards.
type progressTracker struct {
	clipDuration float64
	onProgress   func(pct int)
	lastPct      int
}

func newProgressTracker(clipDuration float64, onProgress func(pct int)) *progressTracker {
	return &progressTracker{clipDuration: clipDuration, onProgress: onProgress}
}

func (p *progressTracker) passOne(line string) { p.report(line, 0) }
func (p *progressTracker) passTwo(line string) { p.report(line, 50) }

func (p *progressTracker) report(line string, base int) {
	seconds, ok := parseProgressTime(line)
	if !ok {
		return
	}
	fraction := seconds / p.clipDuration
	if fraction > 1 {
		fraction = 1
	}
	pct := base + int(fraction*50)
	if pct > 99 {
		pct = 99
	}
	p.emit(pct)
}

func (p *progressTracker) finish() {
	p.emit(100)
}

func (p *progressTracker) emit(pct int) {
	if pct <= p.lastPct || p.onProgress == nil {
		if pct > p.lastPct {
			p.lastPct = pct
		}
		return
	}
	p.lastPct = pct
	p.onProgress(pct)
}

// parseProgressTime extracts the elapsed output time from an ffmpeg
// status line such as "frame= 120 fps= 30 ... time=00:00:04.52 ...".
func parseProgressTime(line string) (float64, bool) {
	idx := strings.Index(line, "time=")
	if idx == -1 {
		return 0, false
	}

	value := strings.TrimLeft(line[idx+len("time="):], " ")
	if end := strings.IndexAny(value, " \t"); end > 0 {
		value = value[:end]
	}
	if value == "" || strings.HasPrefix(value, "N/A") || strings.HasPrefix(value, "-") {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}
