package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/orchestrator"
	"github.com/videoedit/ai-edit-api/render"
)

// generateJobOutput is the job.Output shape of a completed "generate"
// job: the validated outcome, identical to what GET /ai-edit/plan
// returns.
type generateJobOutput struct {
	Outcome orchestrator.Outcome `json:"outcome"`
}

// applyJobInput is the job.Input shape of an "apply" job: the
// requested aspect ratios plus the originating generate job's cached
// GenerateResult, so the apply handler never needs to re-run generate.
type applyJobInput struct {
	SourceJobID  string                 `json:"source_job_id"`
	AspectRatios []render.AspectRatio   `json:"aspect_ratios"`
	Generate     orchestrator.GenerateResult `json:"generate"`
	CallbackURL  string                 `json:"callback_url"`
	CallbackData map[string]interface{} `json:"callback_data"`
}

type applyJobOutput struct {
	PublicURLs []string `json:"public_urls"`
}

// registerJobHandlers wires the two job kinds the HTTP handlers
// enqueue onto the job runner. Each handler unmarshals its job's
// Input, calls into orchestrator.Runner, and writes the result back
// onto job.Output for the corresponding GET endpoint to read.
func (d *AIEditHandlersCollection) registerJobHandlers() {
	d.Jobs.Register(jobKindGenerate, d.runGenerateJob)
	d.Jobs.Register(jobKindApply, d.runApplyJob)
}

func (d *AIEditHandlersCollection) runGenerateJob(ctx context.Context, job *jobs.Job) error {
	genReq, err := unmarshalGenerateRequest(job.Input)
	if err != nil {
		return err
	}

	outcome, err := d.Runner.RunAll(ctx, job.ID, job.ID, genReq, nil)
	if err != nil {
		return err
	}

	output, err := json.Marshal(generateJobOutput{Outcome: outcome})
	if err != nil {
		return fmt.Errorf("marshaling generate job output: %w", err)
	}
	job.Output = output
	return nil
}

func (d *AIEditHandlersCollection) runApplyJob(ctx context.Context, job *jobs.Job) error {
	var input applyJobInput
	if err := json.Unmarshal(job.Input, &input); err != nil {
		return fmt.Errorf("unmarshaling apply job input: %w", err)
	}

	urls, err := d.Runner.ApplyAndPublish(ctx, job.ID, job.ID, input.Generate, input.AspectRatios, nil, input.CallbackURL, input.CallbackData)
	if err != nil {
		return err
	}

	output, err := json.Marshal(applyJobOutput{PublicURLs: urls})
	if err != nil {
		return fmt.Errorf("marshaling apply job output: %w", err)
	}
	job.Output = output
	return nil
}
