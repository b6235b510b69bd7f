// Package transcript extracts mono 16kHz PCM audio once per media and
// drives the transcription capability to produce an ordered list of
// text segments.
package transcript

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
)

// Segment is one ordered span of transcribed speech. Attributes
// invariant across a Transcript: Start_i < End_i <= Start_{i+1}.
type Segment struct {
	Start   float64
	End     float64
	Text    string
	Speaker string
}

// Transcript is the per-media transcription result.
type Transcript struct {
	MediaID  string
	Segments []Segment
	Text     string
	Language string
	Status   string
}

const benignNoSpeechMarker = "no spoken data"

// Transcriber extracts audio once per media (cached under tmp) and
// calls the transcription capability.
type Transcriber struct {
	Client  capability.Transcriber
	TempDir string
}

func New(client capability.Transcriber) *Transcriber {
	return &Transcriber{Client: client, TempDir: config.TempDir}
}

// Transcribe returns the cached mono PCM extraction for mediaID if it
// already exists, otherwise creates it, then calls the transcription
// capability. A "no spoken data" failure is treated as benign: the
// Transcript is returned with zero segments and status completed
// rather than as an error.
func (t *Transcriber) Transcribe(ctx context.Context, requestID, mediaID, localVideoPath, language string) (*Transcript, error) {
	audioPath, err := t.extractAudio(requestID, mediaID, localVideoPath)
	if err != nil {
		return nil, fmt.Errorf("extracting audio for transcription: %w", err)
	}

	segments, detectedLanguage, err := t.Client.Transcribe(ctx, audioPath, language)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), benignNoSpeechMarker) {
			log.Log(requestID, "transcript: no spoken data, treating as benign", "media_id", mediaID)
			return &Transcript{MediaID: mediaID, Language: language, Status: "completed"}, nil
		}
		return nil, fmt.Errorf("transcription capability call failed: %w", err)
	}

	out := &Transcript{MediaID: mediaID, Language: detectedLanguage, Status: "completed"}
	out.Segments = make([]Segment, len(segments))
	texts := make([]string, len(segments))
	for i, s := range segments {
		out.Segments[i] = Segment{Start: s.Start, End: s.End, Text: s.Text}
		texts[i] = s.Text
	}
	out.Text = strings.Join(texts, " ")
	return out, nil
}

// extractAudio caches the mono 16kHz PCM WAV extraction under
// tmp/<media_id>/audio.wav, returning the existing file if present.
func (t *Transcriber) extractAudio(requestID, mediaID, localVideoPath string) (string, error) {
	dir := filepath.Join(t.TempDir, mediaID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating media temp dir: %w", err)
	}
	out := filepath.Join(dir, "audio.wav")

	if st, err := os.Stat(out); err == nil && st.Size() > 0 {
		return out, nil
	}

	args := []string{
		"-i", localVideoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		out, "-y",
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(timeoutCtx, "ffmpeg", args...)

	log.Log(requestID, "transcript: extracting audio", "compiled-command", fmt.Sprintf("ffmpeg %s", args))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("extracting audio from %s [%s]: %w", localVideoPath, stderr.String(), err)
	}
	return out, nil
}
