package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/videoedit/ai-edit-api/config"
)

// WriteConcatList writes an ffmpeg concat-demuxer list file naming
// clipPaths in order.
func WriteConcatList(listPath string, clipPaths []string) error {
	var b bytes.Buffer
	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving concat entry %s: %w", p, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}
	return os.WriteFile(listPath, b.Bytes(), 0644)
}

// FinalRenderOptions controls the optional stages of the final concat
// invocation.
type FinalRenderOptions struct {
	HasAudio     bool
	SRTPath      string // non-empty burns in captions
	CaptionsFont int
}

// Concat runs the concat-demuxer step (-f concat -safe 0), applying
// EBU R128 loudness normalization when audio is present, burning in
// an SRT when provided, and remuxing with -movflags +faststart.
// Grounded on video/clip.go's raw exec.CommandContext invocation with
// buffered stdout/stderr capture.
func Concat(requestID, listPath, outPath string, opts FinalRenderOptions) error {
	args := []string{"-f", "concat", "-safe", "0", "-i", listPath}

	var filters []string
	if opts.SRTPath != "" {
		fontSize := opts.CaptionsFont
		if fontSize == 0 {
			fontSize = config.CaptionFontSize
		}
		style := fmt.Sprintf("FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=%d", fontSize, config.CaptionOutlineSize)
		filters = append(filters, fmt.Sprintf("subtitles=%s:force_style='%s'", opts.SRTPath, style))
	}
	if len(filters) > 0 {
		args = append(args, "-vf", joinFilters(filters))
	}

	args = append(args, "-c:v", "libx264", "-preset", config.RenderPreset, "-crf", fmt.Sprintf("%d", config.RenderCRF))
	if opts.HasAudio {
		args = append(args, "-c:a", config.RenderAudioCodec,
			"-af", fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s", config.LoudnormI, config.LoudnormTP, config.LoudnormLRA))
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-movflags", "+faststart", outPath, "-y")

	ctx, cancel := context.WithTimeout(context.Background(), config.UploadTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("concat render for request %s [%s]: %w", requestID, stderr.String(), err)
	}
	return nil
}

func joinFilters(filters []string) string {
	out := filters[0]
	for _, f := range filters[1:] {
		out += "," + f
	}
	return out
}

// probeTimeout is not referenced by the renderer: its first-segment
// audio probe (spec.md §4.11 step 4) goes through media.Prober, whose
// ffprobe call carries its own 60-second timeout.
const probeTimeout = 30 * time.Second
