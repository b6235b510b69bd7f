package orchestrator

import (
	"context"
	"fmt"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/edl"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/transcript"
)

// Renderer is the subset of *render.Renderer the apply stage needs;
// narrowed to an interface so tests can substitute a fake instead of
// shelling out to ffmpeg.
type Renderer interface {
	Render(ctx context.Context, requestID, jobID string, sources []render.Source, aspect render.AspectRatio, captionSegments []transcript.Segment) (render.Result, error)
}

// Apply converts a validated plan into one rendered MP4 per requested
// aspect ratio. It consumes GenerateResult's cached per-video facts
// rather than re-fetching or re-probing anything, per spec.md §4.13's
// "apply consumes the plan produced by generate" requirement.
func (p *Pipeline) Apply(ctx context.Context, requestID, jobID string, gen GenerateResult, aspectRatios []render.AspectRatio, transcriptSegments []transcript.Segment, renderer Renderer) (ApplyResult, error) {
	renderSegments, _ := edl.Convert(gen.Plan.EDL)
	if len(renderSegments) == 0 {
		return ApplyResult{}, apierrors.Unretriable(apierrors.NewValidationFailure(
			"apply: plan has no keep segments to render", nil,
		))
	}

	sources, err := buildSources(renderSegments, gen)
	if err != nil {
		return ApplyResult{}, err
	}

	var warnings []string
	sources, warnings = validateSourcesPerVideo(sources, gen.SourceDurations)
	for _, w := range warnings {
		log.Log(requestID, "apply: dropped out-of-range render segment", "warning", w)
	}
	if len(sources) == 0 {
		return ApplyResult{}, apierrors.Unretriable(apierrors.NewValidationFailure(
			"apply: no segments remain after source-range validation", nil,
		))
	}

	var results []render.Result
	for _, aspect := range aspectRatios {
		res, err := renderer.Render(ctx, requestID, jobID, sources, aspect, transcriptSegments)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("rendering aspect %s: %w", aspect, err)
		}
		results = append(results, res)
	}
	return ApplyResult{Renders: results}, nil
}

// validateSourcesPerVideo re-checks each render source against its own
// source video's duration via render.ValidateSources, called one
// video_id at a time since that function clamps a single
// sourceDurationSecs across the whole slice. This is the renderer-side
// half of spec.md §4.11 step 1: the EDL is already sanitized by
// edl.Validate, but apply does not trust a plan that skipped it.
func validateSourcesPerVideo(sources []render.Source, durations map[string]float64) ([]render.Source, []string) {
	var (
		valid    []render.Source
		warnings []string
	)
	for _, s := range sources {
		duration, ok := durations[s.VideoID]
		if !ok || duration <= 0 {
			// No known source duration to range-check against (e.g. a
			// caller-assembled GenerateResult in a test); pass the
			// segment through unchanged rather than dropping it.
			valid = append(valid, s)
			continue
		}
		kept, w := render.ValidateSources([]render.Source{s}, duration)
		valid = append(valid, kept...)
		warnings = append(warnings, w...)
	}
	return valid, warnings
}

func buildSources(renderSegments []edl.RenderSegment, gen GenerateResult) ([]render.Source, error) {
	sources := make([]render.Source, 0, len(renderSegments))
	for _, seg := range renderSegments {
		localPath, ok := gen.LocalPaths[seg.VideoID]
		if !ok {
			return nil, fmt.Errorf("apply: no cached local path for video_id %q", seg.VideoID)
		}
		dims := gen.Dimensions[seg.VideoID]
		sources = append(sources, render.Source{
			RenderSegment: seg,
			LocalPath:     localPath,
			Width:         dims[0],
			Height:        dims[1],
			HasAudio:      gen.HasAudio[seg.VideoID],
		})
	}
	return sources, nil
}
