package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/requests"
)

type planResponse struct {
	JobID  string      `json:"job_id"`
	Status jobs.Status `json:"status"`
	Error  string      `json:"error,omitempty"`
	Plan   interface{} `json:"plan,omitempty"`
}

// Plan handles GET /ai-edit/plan/{job_id}: returns the persisted
// generate job's status, and its validated plan once completed.
func (d *AIEditHandlersCollection) Plan() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID := requests.GetRequestID(req)
		jobID := ps.ByName("job_id")

		job, err := d.Store.Get(jobID)
		if err != nil {
			apierrors.WriteHTTPNotFound(w, "job not found", err)
			return
		}

		resp := planResponse{JobID: job.ID, Status: job.Status, Error: job.Error}
		if job.Status == jobs.StatusCompleted && len(job.Output) > 0 {
			var out generateJobOutput
			if err := json.Unmarshal(job.Output, &out); err != nil {
				apierrors.WriteHTTPInternalServerError(w, "cannot decode job output", err)
				return
			}
			resp.Plan = out.Outcome
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.LogError(requestID, "failed to encode plan response", err)
		}
	}
}
