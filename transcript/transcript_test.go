package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/capability"
)

type fakeTranscriber struct {
	segments []capability.TranscriptSegment
	language string
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]capability.TranscriptSegment, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.segments, f.language, nil
}

func TestTranscribeJoinsSegmentsAndText(t *testing.T) {
	dir := t.TempDir()
	tr := &Transcriber{Client: &fakeTranscriber{
		segments: []capability.TranscriptSegment{
			{Start: 0, End: 1.5, Text: "hello"},
			{Start: 1.5, End: 3, Text: "world"},
		},
		language: "en",
	}, TempDir: dir}
	tr.extractAudioFn(t, dir)

	out, err := tr.Transcribe(context.Background(), "req-1", "media-1", "/tmp/in.mp4", "en")
	require.NoError(t, err)
	require.Equal(t, "en", out.Language)
	require.Len(t, out.Segments, 2)
	require.Equal(t, "hello world", out.Text)
}

func TestTranscribeTreatsNoSpokenDataAsBenign(t *testing.T) {
	dir := t.TempDir()
	tr := &Transcriber{Client: &fakeTranscriber{err: fmt.Errorf("no spoken data detected")}, TempDir: dir}
	tr.extractAudioFn(t, dir)

	out, err := tr.Transcribe(context.Background(), "req-1", "media-1", "/tmp/in.mp4", "en")
	require.NoError(t, err)
	require.Equal(t, "completed", out.Status)
	require.Empty(t, out.Segments)
}

// extractAudioFn pre-seeds the cached audio path so tests never shell
// out to ffmpeg.
func (tr *Transcriber) extractAudioFn(t *testing.T, dir string) {
	t.Helper()
	mediaDir := filepath.Join(dir, "media-1")
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "audio.wav"), []byte("RIFF"), 0o644))
}
