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

type editResponse struct {
	EditJobID  string      `json:"edit_job_id"`
	Status     jobs.Status `json:"status"`
	Error      string      `json:"error,omitempty"`
	PublicURLs []string    `json:"output_urls,omitempty"`
}

// Edit handles GET /edit/{edit_job_id}: returns the render job's
// status and, once completed, the public URLs of every rendered
// aspect ratio (spec.md §6 / §7 "completed jobs expose output URLs
// via the status endpoint").
func (d *AIEditHandlersCollection) Edit() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID := requests.GetRequestID(req)
		editJobID := ps.ByName("edit_job_id")

		job, err := d.Store.Get(editJobID)
		if err != nil {
			apierrors.WriteHTTPNotFound(w, "edit job not found", err)
			return
		}

		resp := editResponse{EditJobID: job.ID, Status: job.Status, Error: job.Error}
		if job.Status == jobs.StatusCompleted && len(job.Output) > 0 {
			var out applyJobOutput
			if err := json.Unmarshal(job.Output, &out); err != nil {
				apierrors.WriteHTTPInternalServerError(w, "cannot decode job output", err)
				return
			}
			resp.PublicURLs = out.PublicURLs
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.LogError(requestID, "failed to encode edit response", err)
		}
	}
}
