package edl

import (
	"sort"

	"github.com/videoedit/ai-edit-api/agent"
)

// RenderSegment is the renderer-facing EDL entry: only "keep"
// segments reach here, sorted by (video_id, start), with adjacent
// same-source segments merged.
type RenderSegment struct {
	Start   float64
	End     float64
	VideoID string
}

// Convert keeps only type=="keep" segments, sorts by (video_id,
// start), and merges touching or overlapping same-source segments
// (prev.End >= next.Start). Transition segments are returned
// separately for downstream styling.
func Convert(segments []agent.Segment) (render []RenderSegment, transitions []agent.Segment) {
	var kept []agent.Segment
	for _, s := range segments {
		switch s.Type {
		case "keep":
			kept = append(kept, s)
		case "transition":
			transitions = append(transitions, s)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].VideoID != kept[j].VideoID {
			return kept[i].VideoID < kept[j].VideoID
		}
		return kept[i].Start < kept[j].Start
	})

	for _, s := range kept {
		if n := len(render); n > 0 && render[n-1].VideoID == s.VideoID && render[n-1].End >= s.Start {
			if s.End > render[n-1].End {
				render[n-1].End = s.End
			}
			continue
		}
		render = append(render, RenderSegment{Start: s.Start, End: s.End, VideoID: s.VideoID})
	}
	return render, transitions
}
