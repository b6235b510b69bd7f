package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/transcript"
)

func makeFrames(n int) []caption.Frame {
	out := make([]caption.Frame, n)
	for i := 0; i < n; i++ {
		out[i] = caption.Frame{
			FrameNumber:      i,
			TimestampSeconds: float64(i),
			Caption:          "a caption",
			Status:           caption.FrameStatusCompleted,
		}
	}
	return out
}

func TestFramesPassesThroughUnderLimit(t *testing.T) {
	frames := makeFrames(5)
	out, meta := Frames(frames, 50, "temporal_sampling")
	require.Len(t, out, 5)
	require.Equal(t, 5, meta.OriginalCount)
	require.Equal(t, 5, meta.CompressedCount)
}

func TestFramesDropsEmptyAndFailed(t *testing.T) {
	frames := []caption.Frame{
		{FrameNumber: 0, Caption: "", Status: caption.FrameStatusCompleted},
		{FrameNumber: 1, Caption: "ok", Status: caption.FrameStatusFailed},
		{FrameNumber: 2, Caption: "ok", Status: caption.FrameStatusCompleted},
	}
	out, _ := Frames(frames, 50, "temporal_sampling")
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].FrameNumber)
}

func TestFramesTemporalSamplingKeepsFirstAndLast(t *testing.T) {
	frames := makeFrames(100)
	out, meta := Frames(frames, 10, "temporal_sampling")
	require.Len(t, out, 10)
	require.Equal(t, 0.0, out[0].TimestampSeconds)
	require.Equal(t, 99.0, out[len(out)-1].TimestampSeconds)
	require.Equal(t, 100, meta.OriginalCount)
	require.Equal(t, 10, meta.CompressedCount)
	require.InDelta(t, 0.1, meta.Ratio, 0.001)

	for i := 1; i < len(out); i++ {
		require.Less(t, out[i-1].TimestampSeconds, out[i].TimestampSeconds, "output must be sorted by timestamp")
	}
}

func TestFramesImportanceBasedPicksLongestCaptions(t *testing.T) {
	frames := makeFrames(5)
	frames[2].Caption = "a much much longer caption than the rest"
	out, _ := Frames(frames, 1, "importance_based")
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].FrameNumber)
}

func TestScenesPassesThroughUnderLimit(t *testing.T) {
	scenes := []scene.Scene{{Index: 0, Start: 0, End: 5}}
	out, meta := Scenes(scenes, 20)
	require.Len(t, out, 1)
	require.Equal(t, 1, meta.CompressedCount)
}

func TestScenesKeyMomentsKeepsLongestAndRestoresOrder(t *testing.T) {
	scenes := []scene.Scene{
		{Index: 0, Start: 0, End: 1},   // 1s
		{Index: 1, Start: 1, End: 11},  // 10s
		{Index: 2, Start: 11, End: 13}, // 2s
	}
	out, meta := Scenes(scenes, 2)
	require.Len(t, out, 2)
	require.Equal(t, 1.0, out[0].Start, "shorter-but-earlier scene dropped, order restored by start")
	require.Equal(t, 11.0, out[1].Start)
	require.Equal(t, 3, meta.OriginalCount)
}

func TestTranscriptUniformSubsampling(t *testing.T) {
	segs := make([]transcript.Segment, 1000)
	for i := range segs {
		segs[i] = transcript.Segment{Start: float64(i), End: float64(i + 1), Text: "word"}
	}
	out, meta := Transcript(segs, 100, "temporal")
	require.Len(t, out, 100)
	require.Equal(t, 1000, meta.OriginalCount)
}

func TestTranscriptDensityKeepsMostWords(t *testing.T) {
	segs := []transcript.Segment{
		{Start: 0, End: 1, Text: "one"},
		{Start: 1, End: 2, Text: "one two three four five"},
		{Start: 2, End: 3, Text: "one two"},
	}
	out, _ := Transcript(segs, 1, "density")
	require.Len(t, out, 1)
	require.Equal(t, "one two three four five", out[0].Text)
}
