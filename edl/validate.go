// Package edl validates and converts the agent's raw edit decision
// list into the sorted, merged form the renderer consumes.
package edl

import (
	"fmt"
	"math"
	"sort"

	"github.com/videoedit/ai-edit-api/agent"
)

const minSegmentDuration = 0.1

// ValidationResult is the outcome of validating one agent.Plan against
// a source duration: the sanitized EDL plus any hard errors or
// warnings found along the way.
type ValidationResult struct {
	IsValid      bool
	Errors       []string
	Warnings     []string
	SanitizedEDL []agent.Segment
	Coverage     float64
}

// Validate sanitizes plan.EDL against sourceDurationSecs and checks
// the plan's story_analysis and key_moments for range/ordering
// errors. IsValid is true iff there are no hard errors — warnings
// alone don't fail validation.
func Validate(plan agent.Plan, sourceDurationSecs float64) ValidationResult {
	var result ValidationResult

	sanitized := make([]agent.Segment, 0, len(plan.EDL))
	for _, seg := range plan.EDL {
		s, ok := sanitizeSegment(seg, sourceDurationSecs)
		if !ok {
			continue
		}
		sanitized = append(sanitized, s)
	}
	result.SanitizedEDL = sanitized

	result.Warnings = append(result.Warnings, detectOverlapWarnings(sanitized)...)

	var keepDuration float64
	for _, s := range sanitized {
		if s.Type == "keep" {
			keepDuration += s.End - s.Start
		}
	}
	if sourceDurationSecs > 0 {
		result.Coverage = keepDuration / sourceDurationSecs
	}
	if result.Coverage < 0.5 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("coverage %.2f is below 0.5", result.Coverage))
	}

	if err := validateTimestamp("story_analysis.hook_timestamp", plan.StoryAnalysis.HookTimestamp, sourceDurationSecs); err != "" {
		result.Errors = append(result.Errors, err)
	}
	if err := validateTimestamp("story_analysis.climax_timestamp", plan.StoryAnalysis.ClimaxTimestamp, sourceDurationSecs); err != "" {
		result.Errors = append(result.Errors, err)
	}

	for i, km := range plan.KeyMoments {
		if km.Start < 0 || km.End > sourceDurationSecs || km.Start >= km.End {
			result.Errors = append(result.Errors, fmt.Sprintf("key_moments[%d] out of range or start >= end", i))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func sanitizeSegment(seg agent.Segment, sourceDurationSecs float64) (agent.Segment, bool) {
	if seg.Start == 0 && seg.End == 0 && seg.Type == "" {
		return agent.Segment{}, false
	}

	start := seg.Start
	end := seg.End
	if start < 0 {
		start = 0
	}
	if end > sourceDurationSecs {
		end = sourceDurationSecs
	}
	if start >= end {
		return agent.Segment{}, false
	}
	if end-start < minSegmentDuration {
		return agent.Segment{}, false
	}

	seg.Start = round2(start)
	seg.End = round2(end)
	return seg, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func detectOverlapWarnings(segments []agent.Segment) []string {
	var warnings []string
	byVideo := make(map[string][]agent.Segment)
	for _, s := range segments {
		if s.Type == "transition" {
			continue
		}
		byVideo[s.VideoID] = append(byVideo[s.VideoID], s)
	}
	for videoID, segs := range byVideo {
		sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
		for i := 1; i < len(segs); i++ {
			if segs[i].Start < segs[i-1].End {
				warnings = append(warnings, fmt.Sprintf("overlapping segments in video %q at %.2f/%.2f", videoID, segs[i-1].End, segs[i].Start))
			}
		}
	}
	return warnings
}

func validateTimestamp(name string, value, sourceDurationSecs float64) string {
	if value < 0 || value > sourceDurationSecs {
		return fmt.Sprintf("%s=%.2f out of range [0, %.2f]", name, value, sourceDurationSecs)
	}
	return ""
}
