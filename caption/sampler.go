package caption

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
)

// Aggregate reports how many frames of one media were sampled,
// captioned, and failed.
type Aggregate struct {
	Total     int
	Completed int
	Failed    int
}

// Sampler extracts one frame every granularitySecs seconds from a
// local video file and captions each one through a vision capability,
// persisting a Frame record per sample. Captioning for all frames of
// one media runs concurrently, bounded by config.FrameCaptionConcurrency;
// a failing frame is recorded failed and does not abort the media.
type Sampler struct {
	Repo    Repository
	Vision  capability.Captioner
	TempDir string

	// extractFn defaults to (*Sampler).extractFrame; tests override it
	// to avoid shelling out to ffmpeg.
	extractFn func(localPath string, timestamp float64) ([]byte, error)
}

func NewSampler(repo Repository, vision capability.Captioner) *Sampler {
	s := &Sampler{Repo: repo, Vision: vision, TempDir: config.TempDir}
	s.extractFn = s.extractFrame
	return s
}

// Sample walks mediaID's video in granularitySecs-second steps,
// extracting and captioning each frame. Frames already recorded for
// (mediaID, frame_number) are skipped, making Sample restartable.
func (s *Sampler) Sample(ctx context.Context, requestID, mediaID, localPath string, durationSecs, granularitySecs float64, prompt string) (Aggregate, error) {
	if granularitySecs <= 0 {
		granularitySecs = config.DefaultFrameGranularitySecs
	}

	timestamps := sampleTimestamps(durationSecs, granularitySecs)
	agg := Aggregate{Total: len(timestamps)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, config.FrameCaptionConcurrency)

	for i, ts := range timestamps {
		frameNumber := i
		timestamp := ts

		exists, err := s.Repo.Exists(mediaID, frameNumber)
		if err != nil {
			return agg, fmt.Errorf("checking existing frame %d: %w", frameNumber, err)
		}
		if exists {
			mu.Lock()
			agg.Completed++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			frame := s.captionOne(ctx, requestID, mediaID, frameNumber, timestamp, localPath, prompt)
			if err := s.Repo.Create(&frame); err != nil {
				log.Log(requestID, "caption: failed to persist frame", "media_id", mediaID, "frame", frameNumber, "error", err)
			}

			mu.Lock()
			if frame.Status == FrameStatusCompleted {
				agg.Completed++
			} else {
				agg.Failed++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return agg, nil
}

func (s *Sampler) captionOne(ctx context.Context, requestID, mediaID string, frameNumber int, timestamp float64, localPath, prompt string) Frame {
	frame := Frame{MediaID: mediaID, FrameNumber: frameNumber, TimestampSeconds: timestamp}

	jpegBytes, err := s.extractFn(localPath, timestamp)
	if err != nil {
		frame.Status = FrameStatusFailed
		frame.Error = err.Error()
		log.Log(requestID, "caption: extraction failed", "media_id", mediaID, "frame", frameNumber, "error", err)
		return frame
	}

	dataURL := capability.CaptionDataURL("image/jpeg", jpegBytes)
	text, _, _, err := s.Vision.Caption(ctx, dataURL, prompt)
	if err != nil {
		frame.Status = FrameStatusFailed
		frame.Error = err.Error()
		log.Log(requestID, "caption: vision call failed", "media_id", mediaID, "frame", frameNumber, "error", err)
		return frame
	}

	frame.Caption = text
	frame.Status = FrameStatusCompleted
	return frame
}

// extractFrame seeks to timestamp and extracts exactly one JPEG frame,
// the same Input/Output/KwArgs pattern used for keyframe thumbnails.
func (s *Sampler) extractFrame(localPath string, timestamp float64) ([]byte, error) {
	dir, err := os.MkdirTemp(s.TempDir, "frame-*")
	if err != nil {
		return nil, fmt.Errorf("creating frame temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "frame.jpg")
	var ffmpegErr bytes.Buffer
	err = ffmpeg.
		Input(localPath, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.3f", timestamp)}).
		Output(out, ffmpeg.KwArgs{"vframes": "1", "q:v": "2"}).
		OverWriteOutput().WithErrorOutput(&ffmpegErr).Run()
	if err != nil {
		return nil, fmt.Errorf("extracting frame at %.3fs [%s]: %w", timestamp, ffmpegErr.String(), err)
	}

	return os.ReadFile(out)
}

// ExtractRepresentativeFrames pulls k JPEG frames evenly spaced across
// [start, end], reusing the same single-frame ffmpeg seek extractFrame
// uses. It takes a tempDir ahead of the scene.FrameExtractor
// parameters, so a closure that fixes tempDir adapts it to
// scene.Segmenter's representative-frame capture without a second
// extraction path.
func ExtractRepresentativeFrames(tempDir, localPath string, start, end float64, k int) ([][]byte, error) {
	if k <= 0 {
		return nil, nil
	}
	s := &Sampler{TempDir: tempDir}
	s.extractFn = s.extractFrame

	span := end - start
	frames := make([][]byte, 0, k)
	for i := 0; i < k; i++ {
		ts := start
		if k > 1 {
			ts = start + span*float64(i)/float64(k-1)
		}
		jpegBytes, err := s.extractFn(localPath, ts)
		if err != nil {
			return nil, fmt.Errorf("extracting representative frame %d/%d: %w", i+1, k, err)
		}
		frames = append(frames, jpegBytes)
	}
	return frames, nil
}

// sampleTimestamps emits one timestamp for every frame_index where
// frame_index mod (fps*granularitySecs) == 0, expressed directly in
// seconds so the caller doesn't need a frame-accurate decode loop.
func sampleTimestamps(durationSecs, granularitySecs float64) []float64 {
	if durationSecs <= 0 || granularitySecs <= 0 {
		return nil
	}
	count := int(math.Floor(durationSecs/granularitySecs)) + 1
	out := make([]float64, 0, count)
	for t := 0.0; t < durationSecs; t += granularitySecs {
		out = append(out, t)
	}
	return out
}
