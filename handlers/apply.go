package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/xeipuuv/gojsonschema"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/requests"
)

type applyRequestBody struct {
	AspectRatios []string `json:"aspect_ratios"`
}

type applyResponse struct {
	EditJobID string `json:"edit_job_id"`
}

// Apply handles POST /ai-edit/apply/{job_id}: enqueues a render job
// against an existing completed generate plan. Returns an
// edit_job_id distinct from the originating generate job_id, polled
// via GET /edit/{edit_job_id}.
func (d *AIEditHandlersCollection) Apply() httprouter.Handle {
	schema := inputSchemasCompiled["ApplyRequest"]

	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID := requests.GetRequestID(req)
		sourceJobID := ps.ByName("job_id")

		var body applyRequestBody
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
			apierrors.WriteHTTPBadBodySchema("apply", w, result.Errors())
			return
		} else if err := json.Unmarshal(payload, &body); err != nil {
			apierrors.WriteHTTPBadRequest(w, "Invalid request payload", err)
			return
		}

		sourceJob, err := d.Store.Get(sourceJobID)
		if err != nil {
			apierrors.WriteHTTPNotFound(w, "generate job not found", err)
			return
		}
		if sourceJob.Status != jobs.StatusCompleted {
			apierrors.WriteHTTPBadRequest(w, "generate job has not completed", nil)
			return
		}

		var generated generateJobOutput
		if err := json.Unmarshal(sourceJob.Output, &generated); err != nil {
			apierrors.WriteHTTPInternalServerError(w, "cannot decode generate job output", err)
			return
		}
		if !generated.Outcome.Validation.IsValid {
			apierrors.WriteHTTPBadRequest(w, "generate job's plan failed validation", nil)
			return
		}

		aspectRatios := make([]render.AspectRatio, 0, len(body.AspectRatios))
		for _, a := range body.AspectRatios {
			aspectRatios = append(aspectRatios, render.AspectRatio(a))
		}

		applyInput, err := json.Marshal(applyJobInput{
			SourceJobID:  sourceJobID,
			AspectRatios: aspectRatios,
			Generate:     generated.Outcome.Generate,
		})
		if err != nil {
			apierrors.WriteHTTPInternalServerError(w, "cannot marshal apply job input", err)
			return
		}

		editJobID := config.RandomTrailer(8)
		log.AddContext(requestID, "edit_job_id", editJobID, "source_job_id", sourceJobID)
		if _, err := d.Jobs.Enqueue(context.Background(), editJobID, jobKindApply, applyInput, config.DefaultJobMaxRetries); err != nil {
			apierrors.WriteHTTPInternalServerError(w, "cannot enqueue apply job", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(applyResponse{EditJobID: editJobID}); err != nil {
			log.LogError(requestID, "failed to encode apply response", err)
		}
	}
}
