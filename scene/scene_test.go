package scene

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/capability"
)

func TestTimeBasedPartitionsUniformly(t *testing.T) {
	scenes := TimeBased("media-1", 10, 4)
	require.Len(t, scenes, 3)
	require.Equal(t, 0.0, scenes[0].Start)
	require.Equal(t, 4.0, scenes[0].End)
	require.Equal(t, 8.0, scenes[2].Start)
	require.Equal(t, 10.0, scenes[2].End, "last scene is clipped to media duration")
}

func TestTimeBasedEmptyOnInvalidInput(t *testing.T) {
	require.Empty(t, TimeBased("media-1", 0, 4))
	require.Empty(t, TimeBased("media-1", 10, 0))
}

type fakeExtractor struct {
	segments []capability.SceneSegment
}

func (f *fakeExtractor) Extract(ctx context.Context, videoHandle, extractionType, prompt string, cfg map[string]interface{}) ([]capability.SceneSegment, error) {
	return f.segments, nil
}

type fakeCaptioner struct{}

func (fakeCaptioner) Caption(ctx context.Context, imageURLOrDataURL, prompt string) (string, string, capability.Usage, error) {
	return "captioned shot", "stub", capability.Usage{}, nil
}

func TestShotBasedFillsEndFromNextStartAndCaptions(t *testing.T) {
	extractor := &fakeExtractor{segments: []capability.SceneSegment{
		{Start: 5, End: 0, Description: "raw-desc-2"},
		{Start: 0, End: 0, Description: "raw-desc-1"},
	}}
	extractFrames := func(localPath string, start, end float64, k int) ([][]byte, error) {
		return [][]byte{[]byte("jpeg")}, nil
	}

	seg := NewSegmenter(extractor, fakeCaptioner{}, extractFrames)
	seg.PollMaxElapsed = time.Second

	scenes, err := seg.ShotBased(context.Background(), "req-1", "media-1", "/tmp/in.mp4", 12)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	require.Equal(t, 0.0, scenes[0].Start)
	require.Equal(t, 5.0, scenes[0].End, "first scene ends where the next one starts")
	require.Equal(t, 5.0, scenes[1].Start)
	require.Equal(t, 12.0, scenes[1].End, "last scene ends at media duration")
	require.Equal(t, "captioned shot", scenes[0].Caption)
}
