// Package render turns a validated EDL into a finished MP4 per output
// aspect ratio: per-segment extraction, aspect-ratio transform, concat,
// loudness normalization, and caption burn-in, finished with a
// faststart remux.
package render

import (
	"fmt"

	"github.com/videoedit/ai-edit-api/edl"
)

// AspectRatio is one of the three output shapes spec.md §6 names.
type AspectRatio string

const (
	AspectPortrait AspectRatio = "9:16"
	AspectSquare   AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
)

// Source is one render segment plus the facts about its source file
// the filter graph and concat step need.
type Source struct {
	edl.RenderSegment
	LocalPath string
	Width     int
	Height    int
	HasAudio  bool
}

const minSegmentDuration = 0.1

// ValidateSources drops segments that are empty or out of range,
// mirroring the renderer's own defensive re-check of step 1 (the EDL
// is already validated upstream by edl.Validate, but the renderer
// does not trust a caller that skips it).
func ValidateSources(sources []Source, sourceDurationSecs float64) ([]Source, []string) {
	var (
		valid    []Source
		warnings []string
	)
	for _, s := range sources {
		if s.Start < 0 || s.End > sourceDurationSecs || s.Start >= s.End {
			warnings = append(warnings, fmt.Sprintf("dropping out-of-range segment [%.2f,%.2f] for %s", s.Start, s.End, s.VideoID))
			continue
		}
		if s.End-s.Start < minSegmentDuration {
			warnings = append(warnings, fmt.Sprintf("dropping sub-minimum-duration segment [%.2f,%.2f] for %s", s.Start, s.End, s.VideoID))
			continue
		}
		valid = append(valid, s)
	}
	return valid, warnings
}

const aspectMatchTolerance = 0.02

// filterGraph returns the scale+crop chain for the given aspect ratio,
// or "" when the source already matches the target within tolerance
// (identity, no filter applied) per spec.md §6.
func filterGraph(aspect AspectRatio, width, height int) string {
	if width > 0 && height > 0 {
		ratio := float64(width) / float64(height)
		target := targetRatio(aspect)
		if target > 0 && abs(ratio-target) < aspectMatchTolerance {
			return ""
		}
	}

	switch aspect {
	case AspectPortrait:
		return "scale=-2:1920,crop=1080:1920:(in_w-1080)/2:0"
	case AspectSquare:
		return "scale='if(gte(iw,ih),-2,1080)':'if(gte(iw,ih),1080,-2)',crop=1080:1080:(in_w-1080)/2:(in_h-1080)/2"
	case AspectLandscape:
		return "scale=1920:-2,crop=1920:1080:0:(in_h-1080)/2"
	default:
		return ""
	}
}

func targetRatio(aspect AspectRatio) float64 {
	switch aspect {
	case AspectPortrait:
		return 9.0 / 16.0
	case AspectSquare:
		return 1.0
	case AspectLandscape:
		return 16.0 / 9.0
	default:
		return 0
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
