// Package compress bounds the material handed to the LLM prompt
// builder regardless of source size, while preserving information
// density. Every function here is pure: no I/O, no external calls.
package compress

import (
	"fmt"
	"math"
	"sort"

	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/transcript"
)

// Metadata records a single compression decision: how many items went
// in, how many came out, and the resulting ratio, for the job's
// telemetry.
type Metadata struct {
	Strategy        string  `json:"strategy"`
	OriginalCount   int     `json:"original_count"`
	CompressedCount int     `json:"compressed_count"`
	Ratio           float64 `json:"ratio"`
}

func newMetadata(strategy string, original, compressed int) Metadata {
	ratio := 1.0
	if original > 0 {
		ratio = float64(compressed) / float64(original)
	}
	return Metadata{Strategy: strategy, OriginalCount: original, CompressedCount: compressed, Ratio: ratio}
}

// Frames keeps only frames with a non-empty caption and non-failed
// status, then bounds the result to maxFrames using strategy.
// "importance_based" sorts by caption length; "scene_based" proxies
// to "temporal_sampling"; anything else defaults to temporal_sampling.
func Frames(frames []caption.Frame, maxFrames int, strategy string) ([]caption.Frame, Metadata) {
	usable := make([]caption.Frame, 0, len(frames))
	for _, f := range frames {
		if f.Caption != "" && f.Status != caption.FrameStatusFailed {
			usable = append(usable, f)
		}
	}
	if maxFrames <= 0 {
		maxFrames = 50
	}
	if len(usable) <= maxFrames {
		return usable, newMetadata(strategy, len(frames), len(usable))
	}

	var selected []caption.Frame
	switch strategy {
	case "importance_based":
		selected = selectByImportance(usable, maxFrames)
	default:
		selected = selectTemporal(usable, maxFrames)
	}
	return selected, newMetadata(strategy, len(frames), len(selected))
}

func selectTemporal(frames []caption.Frame, max int) []caption.Frame {
	sort.Slice(frames, func(i, j int) bool { return frames[i].TimestampSeconds < frames[j].TimestampSeconds })

	seen := make(map[string]bool)
	var out []caption.Frame
	add := func(f caption.Frame) {
		key := fmt.Sprintf("%.2f", f.TimestampSeconds)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, f)
	}

	add(frames[0])
	if max > 1 {
		step := float64(len(frames)-1) / float64(max-1)
		for i := 1; i < max-1; i++ {
			idx := int(math.Round(float64(i) * step))
			if idx >= len(frames) {
				idx = len(frames) - 1
			}
			add(frames[idx])
		}
		add(frames[len(frames)-1])
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TimestampSeconds < out[j].TimestampSeconds })
	return out
}

func selectByImportance(frames []caption.Frame, max int) []caption.Frame {
	ranked := make([]caption.Frame, len(frames))
	copy(ranked, frames)
	sort.Slice(ranked, func(i, j int) bool { return len(ranked[i].Caption) > len(ranked[j].Caption) })
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].TimestampSeconds < ranked[j].TimestampSeconds })
	return ranked
}

// Scenes bounds scenes to maxScenes using the key_moments strategy:
// keep the longest-duration scenes, then restore start-order.
func Scenes(scenes []scene.Scene, maxScenes int) ([]scene.Scene, Metadata) {
	if maxScenes <= 0 {
		maxScenes = 20
	}
	if len(scenes) <= maxScenes {
		return scenes, newMetadata("key_moments", len(scenes), len(scenes))
	}

	ranked := make([]scene.Scene, len(scenes))
	copy(ranked, scenes)
	sort.Slice(ranked, func(i, j int) bool {
		return (ranked[i].End - ranked[i].Start) > (ranked[j].End - ranked[j].Start)
	})
	ranked = ranked[:maxScenes]
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Start < ranked[j].Start })

	return ranked, newMetadata("key_moments", len(scenes), len(ranked))
}

// Transcript bounds segments to maxSegments using strategy: "density"
// keeps the segments with the most words; anything else ("temporal")
// uniformly subsamples by index.
func Transcript(segments []transcript.Segment, maxSegments int, strategy string) ([]transcript.Segment, Metadata) {
	if maxSegments <= 0 {
		maxSegments = 100
	}
	if len(segments) <= maxSegments {
		return segments, newMetadata(strategy, len(segments), len(segments))
	}

	var out []transcript.Segment
	if strategy == "density" {
		out = selectByDensity(segments, maxSegments)
	} else {
		out = selectUniform(segments, maxSegments)
	}
	return out, newMetadata(strategy, len(segments), len(out))
}

func selectUniform(segments []transcript.Segment, max int) []transcript.Segment {
	if max <= 0 {
		return nil
	}
	out := make([]transcript.Segment, 0, max)
	step := float64(len(segments)) / float64(max)
	for i := 0; i < max; i++ {
		idx := int(float64(i) * step)
		if idx >= len(segments) {
			idx = len(segments) - 1
		}
		out = append(out, segments[idx])
	}
	return out
}

func selectByDensity(segments []transcript.Segment, max int) []transcript.Segment {
	type indexed struct {
		seg   transcript.Segment
		words int
	}
	ranked := make([]indexed, len(segments))
	for i, s := range segments {
		ranked[i] = indexed{seg: s, words: wordCount(s.Text)}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].words > ranked[j].words })
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]transcript.Segment, len(ranked))
	for i, r := range ranked {
		out[i] = r.seg
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func wordCount(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n'
		if !isSpace && !inWord {
			count++
			inWord = true
		} else if isSpace {
			inWord = false
		}
	}
	return count
}
