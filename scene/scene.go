// Package scene segments a media into semantically coherent time
// ranges, either via a shot-based external detector or a uniform
// time-based partition.
package scene

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/config"
)

// Scene is one semantically coherent, non-overlapping time range
// within a media. Scenes within a media are sorted by Start and cover
// the media monotonically: Scene[i].End == Scene[i+1].Start.
type Scene struct {
	MediaID  string
	Index    int
	Start    float64
	End      float64
	Caption  string
	Metadata map[string]interface{}
}

// TimeBased partitions a media of durationSecs into uniform
// intervalSecs scenes with no captioning.
func TimeBased(mediaID string, durationSecs, intervalSecs float64) []Scene {
	if durationSecs <= 0 || intervalSecs <= 0 {
		return nil
	}
	var scenes []Scene
	idx := 0
	for start := 0.0; start < durationSecs; start += intervalSecs {
		end := start + intervalSecs
		if end > durationSecs {
			end = durationSecs
		}
		scenes = append(scenes, Scene{MediaID: mediaID, Index: idx, Start: start, End: end})
		idx++
	}
	return scenes
}

// FrameExtractor pulls k representative JPEG frames, roughly evenly
// spaced, from [start, end) of a local video file.
type FrameExtractor func(localPath string, start, end float64, k int) ([][]byte, error)

// Segmenter drives shot-based segmentation: it polls the external
// scene-extraction capability for shot boundaries, then captions each
// shot from its representative frames via the vision capability.
type Segmenter struct {
	Extractor       capability.SceneExtractor
	Vision          capability.Captioner
	ExtractFrames   FrameExtractor
	PollMaxElapsed  time.Duration
	RepresentativeK int
	Threshold       int
}

func NewSegmenter(extractor capability.SceneExtractor, vision capability.Captioner, extractFrames FrameExtractor) *Segmenter {
	return &Segmenter{
		Extractor:       extractor,
		Vision:          vision,
		ExtractFrames:   extractFrames,
		PollMaxElapsed:  5 * time.Minute,
		RepresentativeK: config.DefaultRepresentativeFramesPerShot,
		Threshold:       config.DefaultSceneDetectThreshold,
	}
}

// ShotBased detects shot boundaries in videoHandle's video (polling
// the extraction capability with exponential backoff capped at
// s.PollMaxElapsed), then captions every detected shot from its
// representative frames, returning Scene records in start order with
// Scene.End filled in from the next shot's Start (or durationSecs for
// the last one).
func (s *Segmenter) ShotBased(ctx context.Context, requestID, mediaID, localPath string, durationSecs float64) ([]Scene, error) {
	var raw []capability.SceneSegment
	operation := func() error {
		segments, err := s.Extractor.Extract(ctx, mediaID, "shot_detection", "detect shot boundaries", map[string]interface{}{
			"threshold": s.Threshold,
		})
		if err != nil {
			return err
		}
		raw = segments
		return nil
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.MaxElapsedTime = s.PollMaxElapsed
	if err := backoff.Retry(operation, backOff); err != nil {
		return nil, fmt.Errorf("polling shot detector: %w", err)
	}

	sort.Slice(raw, func(i, j int) bool { return raw[i].Start < raw[j].Start })

	scenes := make([]Scene, len(raw))
	for i, shot := range raw {
		end := durationSecs
		if i+1 < len(raw) {
			end = raw[i+1].Start
		}
		scenes[i] = Scene{
			MediaID:  mediaID,
			Index:    i,
			Start:    shot.Start,
			End:      end,
			Caption:  shot.Description,
			Metadata: shot.Metadata,
		}

		if s.Vision == nil || s.ExtractFrames == nil {
			continue
		}
		frames, err := s.ExtractFrames(localPath, shot.Start, end, s.RepresentativeK)
		if err != nil || len(frames) == 0 {
			continue
		}
		caption, err := s.captionRepresentativeFrames(ctx, frames)
		if err == nil && caption != "" {
			scenes[i].Caption = caption
		}
	}
	return scenes, nil
}

// captionRepresentativeFrames captions the first representative frame
// of a shot; later frames are a hedge against a mid-shot vision
// failure, not separately captioned.
func (s *Segmenter) captionRepresentativeFrames(ctx context.Context, frames [][]byte) (string, error) {
	var lastErr error
	for _, f := range frames {
		dataURL := capability.CaptionDataURL("image/jpeg", f)
		text, _, _, err := s.Vision.Caption(ctx, dataURL, "Describe this scene in one sentence.")
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}
