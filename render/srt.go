package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/videoedit/ai-edit-api/transcript"
)

// BuildSRT generates an SRT file body from transcript segments that
// fall within the surviving EDL windows, re-timed onto the rendered
// output's own timeline (concatenated segment durations, not source
// timestamps).
func BuildSRT(segments []transcript.Segment, sources []Source) string {
	var b strings.Builder
	index := 1
	var cursor float64

	for _, src := range sources {
		for _, seg := range segments {
			overlapStart := max(seg.Start, src.Start)
			overlapEnd := min(seg.End, src.End)
			if overlapStart >= overlapEnd {
				continue
			}
			outStart := cursor + (overlapStart - src.Start)
			outEnd := cursor + (overlapEnd - src.Start)
			fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, srtTimestamp(outStart), srtTimestamp(outEnd), seg.Text)
			index++
		}
		cursor += src.End - src.Start
	}
	return b.String()
}

func srtTimestamp(secs float64) string {
	d := time.Duration(secs * float64(time.Second))
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
