package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/edl"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/transcript"
	"github.com/videoedit/ai-edit-api/webhook"
)

// Uploader is the subset of storage.Uploader the run stage needs.
type Uploader interface {
	Upload(ctx context.Context, localPath, bucket, folder, filename string) (string, error)
}

// WebhookCaller is the subset of webhook.Caller the run stage needs.
type WebhookCaller interface {
	Call(requestID, callbackURL string, env webhook.Envelope) error
}

// Runner composes Pipeline's generate/apply stages with storage
// upload and the webhook callback into the full
// generate -> apply -> upload -> callback sequence spec.md §4.13
// requires, with no stage starting until the previous one's result is
// available.
type Runner struct {
	Pipeline *Pipeline
	Renderer Renderer
	Storage  Uploader
	Webhook  WebhookCaller
	Bucket   string
}

// Outcome is the full result of one end-to-end job: the validated
// plan, the validation diagnostics, and (if apply ran) the public
// URLs of every rendered aspect ratio.
type Outcome struct {
	Generate   GenerateResult
	Validation edl.ValidationResult
	PublicURLs []string
}

// RunAll executes all four stages for req. If AutoApply is false,
// only generate runs and apply/upload/callback are skipped — the
// caller is expected to invoke Apply separately via POST
// /ai-edit/apply/{job_id}.
func (o *Runner) RunAll(ctx context.Context, requestID, jobID string, req GenerateRequest, transcriptSegments []transcript.Segment) (Outcome, error) {
	gen, validation, err := o.Pipeline.Generate(ctx, requestID, jobID, req)
	if err != nil {
		return Outcome{Generate: gen}, fmt.Errorf("generate stage: %w", err)
	}
	outcome := Outcome{Generate: gen, Validation: validation}
	if !validation.IsValid {
		return outcome, fmt.Errorf("generate stage: plan failed validation: %v", validation.Errors)
	}
	if !req.AutoApply {
		return outcome, nil
	}

	urls, err := o.ApplyAndPublish(ctx, requestID, jobID, gen, req.AspectRatios, transcriptSegments, req.CallbackURL, req.CallbackData)
	if err != nil {
		return outcome, err
	}
	outcome.PublicURLs = urls
	return outcome, nil
}

// ApplyAndPublish runs the apply -> upload -> callback tail of the
// pipeline against an already-validated GenerateResult. It is shared
// by RunAll (auto_apply requests) and the standalone
// POST /ai-edit/apply/{job_id} handler, which replays it against a
// previously generated plan.
func (o *Runner) ApplyAndPublish(ctx context.Context, requestID, jobID string, gen GenerateResult, aspectRatios []render.AspectRatio, transcriptSegments []transcript.Segment, callbackURL string, callbackData map[string]interface{}) ([]string, error) {
	applyResult, err := o.Pipeline.Apply(ctx, requestID, jobID, gen, aspectRatios, transcriptSegments, o.Renderer)
	if err != nil {
		return nil, fmt.Errorf("apply stage: %w", err)
	}

	urls, err := o.upload(ctx, jobID, applyResult)
	if err != nil {
		if callbackURL != "" {
			return nil, fmt.Errorf("upload stage: %w", err)
		}
		log.Log(requestID, "upload failed and no webhook was requested, keeping local renders only", "err", err)
		return nil, nil
	}

	if len(urls) > 0 {
		if err := o.Webhook.Call(requestID, callbackURL, webhook.Envelope{
			StorageURL:   urls[0],
			CallbackData: callbackData,
		}); err != nil {
			// logged inside Call; non-fatal per spec.md §4.15
		}
	}

	return urls, nil
}

func (o *Runner) upload(ctx context.Context, jobID string, applyResult ApplyResult) ([]string, error) {
	var urls []string
	for _, r := range applyResult.Renders {
		filename := filepath.Base(r.Path)
		url, err := o.Storage.Upload(ctx, r.Path, o.Bucket, filepath.Join(config.ProcessedDir, jobID), filename)
		if err != nil {
			return nil, fmt.Errorf("uploading %s render: %w", r.Aspect, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
