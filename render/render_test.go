package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/edl"
	"github.com/videoedit/ai-edit-api/transcript"
)

func TestValidateSourcesDropsOutOfRangeAndShort(t *testing.T) {
	sources := []Source{
		{RenderSegment: edl.RenderSegment{Start: 0, End: 10, VideoID: "a"}},
		{RenderSegment: edl.RenderSegment{Start: 5, End: 5.05, VideoID: "a"}},
		{RenderSegment: edl.RenderSegment{Start: 90, End: 110, VideoID: "a"}},
	}
	valid, warnings := ValidateSources(sources, 100)
	require.Len(t, valid, 1)
	require.Len(t, warnings, 2)
}

func TestFilterGraphIdentityWhenAspectMatches(t *testing.T) {
	require.Equal(t, "", filterGraph(AspectLandscape, 1920, 1080))
}

func TestFilterGraphReturnsCropChainWhenAspectDiffers(t *testing.T) {
	vf := filterGraph(AspectPortrait, 1920, 1080)
	require.Contains(t, vf, "crop=1080:1920")
}

func TestWriteConcatListWritesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "list.txt")
	clip := filepath.Join(dir, "clip_000.mp4")
	require.NoError(t, os.WriteFile(clip, []byte{}, 0644))

	require.NoError(t, WriteConcatList(listPath, []string{clip}))

	body, err := os.ReadFile(listPath)
	require.NoError(t, err)
	require.Contains(t, string(body), clip)
}

func TestBuildSRTRetimesOntoOutputTimeline(t *testing.T) {
	sources := []Source{
		{RenderSegment: edl.RenderSegment{Start: 10, End: 15, VideoID: "a"}},
		{RenderSegment: edl.RenderSegment{Start: 20, End: 25, VideoID: "a"}},
	}
	segments := []transcript.Segment{
		{Start: 11, End: 13, Text: "first"},
		{Start: 22, End: 24, Text: "second"},
	}
	out := BuildSRT(segments, sources)
	require.Contains(t, out, "first")
	require.Contains(t, out, "second")
	require.Contains(t, out, "00:00:01,000 --> 00:00:03,000")
	require.Contains(t, out, "00:00:07,000 --> 00:00:09,000")
}

func TestBuildSRTSkipsNonOverlappingSegments(t *testing.T) {
	sources := []Source{
		{RenderSegment: edl.RenderSegment{Start: 0, End: 5, VideoID: "a"}},
	}
	segments := []transcript.Segment{
		{Start: 50, End: 55, Text: "outside window"},
	}
	out := BuildSRT(segments, sources)
	require.Empty(t, out)
}
