package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/xeipuuv/gojsonschema"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/orchestrator"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/requests"
	"github.com/videoedit/ai-edit-api/story"
)

// generateRequestBody is the wire shape of POST /ai-edit/generate's
// body (spec.md §6), kept distinct from orchestrator.GenerateRequest
// so the internal engine types don't have to carry json tags for a
// wire contract that predates them.
type generateRequestBody struct {
	VideosData []struct {
		VideoID string `json:"video_id"`
		URL     string `json:"url"`
		Summary string `json:"summary"`
	} `json:"videos_data"`
	Summary      string                 `json:"summary"`
	StoryPrompt  string                 `json:"story_prompt"`
	AutoApply    bool                   `json:"auto_apply"`
	AspectRatios []string               `json:"aspect_ratios"`
	CallbackURL  string                 `json:"callback_url"`
	CallbackData map[string]interface{} `json:"callback_data"`
}

type generateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Generate handles POST /ai-edit/generate: validates the body,
// enqueues a "generate" job, and returns its ID immediately — the
// caller polls GET /ai-edit/plan/{job_id} for the result.
func (d *AIEditHandlersCollection) Generate() httprouter.Handle {
	schema := inputSchemasCompiled["GenerateRequest"]

	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		requestID := requests.GetRequestID(req)

		var body generateRequestBody
		if !HasContentType(req, "application/json") {
			apierrors.WriteHTTPUnsupportedMediaType(w, "Requires application/json content type", nil)
			return
		} else if payload, err := io.ReadAll(req.Body); err != nil {
			apierrors.WriteHTTPInternalServerError(w, "Cannot read payload", err)
			return
		} else if result, err := schema.Validate(gojsonschema.NewBytesLoader(payload)); err != nil {
			apierrors.WriteHTTPInternalServerError(w, "Cannot validate payload", err)
			return
		} else if !result.Valid() {
			apierrors.WriteHTTPBadBodySchema("generate", w, result.Errors())
			return
		} else if err := json.Unmarshal(payload, &body); err != nil {
			apierrors.WriteHTTPBadRequest(w, "Invalid request payload", err)
			return
		}

		genReq := orchestrator.GenerateRequest{
			MediaID:      config.RandomTrailer(8),
			Summary:      body.Summary,
			AutoApply:    body.AutoApply,
			CallbackURL:  body.CallbackURL,
			CallbackData: body.CallbackData,
			Intent:       story.Intent{KeyMessage: body.StoryPrompt},
		}
		for _, v := range body.VideosData {
			genReq.Videos = append(genReq.Videos, orchestrator.VideoInput{VideoID: v.VideoID, URL: v.URL, Summary: v.Summary})
		}
		for _, a := range body.AspectRatios {
			genReq.AspectRatios = append(genReq.AspectRatios, render.AspectRatio(a))
		}
		if len(genReq.AspectRatios) == 0 {
			genReq.AspectRatios = []render.AspectRatio{render.AspectLandscape}
		}

		input, err := json.Marshal(genReq)
		if err != nil {
			apierrors.WriteHTTPInternalServerError(w, "Cannot marshal generate request", err)
			return
		}

		jobID := config.RandomTrailer(8)
		log.AddContext(requestID, "job_id", jobID)
		if _, err := d.Jobs.Enqueue(context.Background(), jobID, jobKindGenerate, input, config.DefaultJobMaxRetries); err != nil {
			apierrors.WriteHTTPInternalServerError(w, "Cannot enqueue generate job", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(generateResponse{JobID: jobID, Status: "queued"}); err != nil {
			log.LogError(requestID, "failed to encode generate response", err)
		}
	}
}

// unmarshalGenerateRequest decodes a generate job's Input back into the
// orchestrator.GenerateRequest it was enqueued with.
func unmarshalGenerateRequest(input []byte) (orchestrator.GenerateRequest, error) {
	var req orchestrator.GenerateRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return req, fmt.Errorf("unmarshaling generate job input: %w", err)
	}
	return req, nil
}
