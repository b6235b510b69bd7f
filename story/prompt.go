package story

import (
	"fmt"
	"strings"

	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/transcript"
)

const systemPrompt = `You are a professional video editor producing an edit decision list (EDL).
Output a JSON object matching the requested schema, and nothing else.
Constraints:
(a) the edit must hook the viewer within the first 2 seconds;
(b) the final cut must not exceed 40 seconds;
(c) pacing must match the requested length percentage — faster cuts for shorter percentages;
(d) the story arc described in the intent must be visible in the emitted EDL;
(e) every segment must exist within its source video's duration;
(f) all timestamps must fall within [0, source_duration] for their video.`

// VideoContext summarizes one source video for the prompt header.
type VideoContext struct {
	VideoID     string
	DurationSec float64
	FrameCount  int
	SceneCount  int
}

// BuildRequest is everything the prompt builder needs to assemble one
// conversation.
type BuildRequest struct {
	Videos     []VideoContext
	Summary    string
	Intent     Intent
	Frames     []caption.Frame
	Scenes     []scene.Scene
	Transcript []transcript.Segment
}

// Build produces the fixed system prompt plus an assembled user
// prompt covering header, summary, intent, frames/scenes/transcript
// blocks, the explicit target-duration computation, pacing rules, and
// a self-check instruction.
func Build(req BuildRequest) []capability.ChatMessage {
	return []capability.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(req)},
	}
}

func buildUserPrompt(req BuildRequest) string {
	var b strings.Builder

	b.WriteString("## Source videos\n")
	for _, v := range req.Videos {
		fmt.Fprintf(&b, "- video_id=%s duration=%.2fs frames=%d scenes=%d\n", v.VideoID, v.DurationSec, v.FrameCount, v.SceneCount)
	}
	multiVideo := len(req.Videos) > 1

	b.WriteString("\n## Summary\n")
	b.WriteString(req.Summary)
	b.WriteString("\n")

	b.WriteString("\n## Story intent\n")
	fmt.Fprintf(&b, "target_audience=%q tone=%q key_message=%q\n", req.Intent.TargetAudience, req.Intent.Tone, req.Intent.KeyMessage)
	fmt.Fprintf(&b, "story_arc: %s\n", req.Intent.summarizeArc())
	fmt.Fprintf(&b, "style_preferences: %s\n", req.Intent.summarizeStyle())

	b.WriteString("\n## Frames (first 50, timestamp: caption)\n")
	for i, f := range req.Frames {
		if i >= 50 {
			break
		}
		fmt.Fprintf(&b, "- %.2fs: %s\n", f.TimestampSeconds, f.Caption)
	}

	b.WriteString("\n## Scenes\n")
	for _, s := range req.Scenes {
		fmt.Fprintf(&b, "- [%.2fs-%.2fs]: %s\n", s.Start, s.End, s.Caption)
	}

	b.WriteString("\n## Transcript (first 100 segments)\n")
	for i, seg := range req.Transcript {
		if i >= 100 {
			break
		}
		fmt.Fprintf(&b, "- [%.2fs-%.2fs]: %s\n", seg.Start, seg.End, seg.Text)
	}

	totalDuration := 0.0
	for _, v := range req.Videos {
		totalDuration += v.DurationSec
	}
	lengthPct := req.Intent.LengthPercentage()
	target := TargetDurationSecs(totalDuration, lengthPct)

	b.WriteString("\n## Task\n")
	fmt.Fprintf(&b, "Compute target duration as max(minimum, duration * pct / 100) where pct=%.1f.\n", lengthPct)
	fmt.Fprintf(&b, "For this source, minimum=20s if duration>20s else 0.6*duration; target = %.2fs.\n", target)
	b.WriteString("Each kept segment must be 1-5 seconds, shorter for lower length percentages. Avoid gaps greater than 3 seconds unless narratively necessary.\n")
	if multiVideo {
		b.WriteString("This plan spans multiple source videos: every emitted segment must carry its video_id.\n")
	}
	b.WriteString("Self-check: before returning, sum the durations of all \"keep\" segments and confirm the sum is within 5% of the target duration computed above.\n")

	return b.String()
}
