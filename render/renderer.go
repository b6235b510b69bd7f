package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/media"
	"github.com/videoedit/ai-edit-api/transcript"
)

// Renderer produces one MP4 per requested aspect ratio from a set of
// validated source segments, per spec.md §4.11.
type Renderer struct {
	Prober  media.Prober
	TempDir string
}

func New(prober media.Prober, tempDir string) *Renderer {
	return &Renderer{Prober: prober, TempDir: tempDir}
}

// Result is one finished render: the aspect ratio it was produced for
// and the local path to the faststart MP4.
type Result struct {
	Aspect   AspectRatio
	Path     string
	HasAudio bool
}

// Render produces one output MP4 for aspect, given the already-cut
// list of render segments (in concat order) and, optionally,
// transcript segments to burn in as captions. The working directory
// is namespaced by jobID and by aspect, so renders of different jobs,
// and of different aspect ratios of one job, don't collide.
func (r *Renderer) Render(ctx context.Context, requestID, jobID string, sources []Source, aspect AspectRatio, captionSegments []transcript.Segment) (Result, error) {
	if len(sources) == 0 {
		return Result{}, apierrors.NewValidationFailure("render: no segments to render", nil)
	}

	workDir := filepath.Join(r.TempDir, jobID, string(aspect))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return Result{}, fmt.Errorf("creating render work dir: %w", err)
	}

	var clipPaths []string
	for i, src := range sources {
		clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := ExtractClip(src, aspect, clipPath); err != nil {
			if retryErr := r.retryFromCache(src, aspect, clipPath); retryErr != nil {
				return Result{}, fmt.Errorf("extracting segment %d: %w", i, err)
			}
		}
		clipPaths = append(clipPaths, clipPath)
		log.Log(requestID, "render: extracted clip", "index", i, "video_id", src.VideoID, "start", src.Start, "end", src.End)
	}

	hasAudio := sources[0].HasAudio
	if r.Prober != nil {
		if probed, err := r.Prober.ProbeFile(requestID, clipPaths[0]); err == nil {
			if _, audioErr := probed.GetTrack(media.TrackTypeAudio); audioErr == nil {
				hasAudio = true
			} else {
				hasAudio = false
			}
		}
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := WriteConcatList(listPath, clipPaths); err != nil {
		return Result{}, err
	}

	var srtPath string
	if len(captionSegments) > 0 {
		srtBody := BuildSRT(captionSegments, sources)
		if srtBody != "" {
			srtPath = filepath.Join(workDir, "captions.srt")
			if err := os.WriteFile(srtPath, []byte(srtBody), 0644); err != nil {
				return Result{}, fmt.Errorf("writing srt: %w", err)
			}
		}
	}

	outPath := filepath.Join(workDir, fmt.Sprintf("edited_%s.mp4", aspectSlug(aspect)))
	opts := FinalRenderOptions{HasAudio: hasAudio, SRTPath: srtPath}
	if err := Concat(requestID, listPath, outPath, opts); err != nil {
		return Result{}, err
	}

	return Result{Aspect: aspect, Path: outPath, HasAudio: hasAudio}, nil
}

// retryFromCache re-attempts extraction once against a locally cached
// copy of the source, per spec.md §4.11's "Fallback" clause. Since
// Source.LocalPath is already the cached file in this implementation
// (the fetcher always materializes a local copy before the renderer
// runs), there is nothing further to fall back to; this records the
// one-retry contract for a future remote-source renderer.
func (r *Renderer) retryFromCache(src Source, aspect AspectRatio, outPath string) error {
	return ExtractClip(src, aspect, outPath)
}

func aspectSlug(aspect AspectRatio) string {
	switch aspect {
	case AspectPortrait:
		return "9_16"
	case AspectSquare:
		return "1_1"
	case AspectLandscape:
		return "16_9"
	default:
		return "unknown"
	}
}
