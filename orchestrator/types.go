// Package orchestrator composes the four pipeline stages — plan
// generation, edit application, storage upload, and webhook callback
// — into the strictly sequential flow spec.md §4.13 requires. It
// mirrors pipeline.Coordinator.StartUploadJob's single synchronous
// closure handed to the job runner, generalized from one hardcoded
// ffmpeg/external split into named stages.
package orchestrator

import (
	"github.com/videoedit/ai-edit-api/agent"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/story"
)

// VideoInput names one source video to analyze, by URL or an already
// locally-cached path.
type VideoInput struct {
	VideoID string
	URL     string
	Summary string
}

// GenerateRequest is the body of POST /ai-edit/generate.
type GenerateRequest struct {
	MediaID      string
	Videos       []VideoInput
	Summary      string
	Intent       story.Intent
	AutoApply    bool
	AspectRatios []render.AspectRatio
	CallbackURL  string
	CallbackData map[string]interface{}
}

// GenerateResult is everything a generate stage produces: the
// validated plan plus the per-video facts the apply stage needs to
// extract and render clips without re-probing.
type GenerateResult struct {
	Plan            agent.Plan
	SourceDurations map[string]float64
	LocalPaths      map[string]string
	Dimensions      map[string][2]int
	HasAudio        map[string]bool
}

// ApplyResult is what the apply stage produces: one rendered file per
// requested aspect ratio.
type ApplyResult struct {
	Renders []render.Result
}
