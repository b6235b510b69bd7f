package render

import (
	"bytes"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/videoedit/ai-edit-api/config"
)

// ExtractClip trims [src.Start, src.End) out of src.LocalPath into
// outPath, re-encoding with the fixed codec profile and, if the
// aspect ratio differs from the source, applying the matching
// scale+crop filter graph. Grounded on thumbnails.go's
// Input(...).Output(...).OverWriteOutput().WithErrorOutput(&buf).Run()
// shape.
func ExtractClip(src Source, aspect AspectRatio, outPath string) error {
	kwargs := ffmpeg.KwArgs{
		"ss":     fmt.Sprintf("%.3f", src.Start),
		"t":      fmt.Sprintf("%.3f", src.End-src.Start),
		"c:v":    "libx264",
		"preset": config.RenderPreset,
		"crf":    config.RenderCRF,
		"c:a":    config.RenderAudioCodec,
	}
	if vf := filterGraph(aspect, src.Width, src.Height); vf != "" {
		kwargs["vf"] = vf
	}

	var stderr bytes.Buffer
	err := ffmpeg.
		Input(src.LocalPath).
		Output(outPath, kwargs).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return fmt.Errorf("extracting clip [%.2f,%.2f] from %s [%s]: %w", src.Start, src.End, src.LocalPath, stderr.String(), err)
	}
	return nil
}
