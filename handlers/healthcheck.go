package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/videoedit/ai-edit-api/log"
)

type HealthcheckResponse struct {
	Status string `json:"status"`
}

// Healthcheck returns HTTP 200 with {"status":"healthy"} whenever the
// process is serving requests; it does not check the job store or any
// other dependency. Used by the load balancer to decide whether to
// route to this node.
func (d *AIEditHandlersCollection) Healthcheck() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		responseObject := HealthcheckResponse{Status: "healthy"}

		b, err := json.Marshal(responseObject)
		if err != nil {
			log.LogNoRequestID("failed to marshal healthcheck status", "err", err)
			b = []byte(`{"status": "marshalling status failed"}`)
		}

		if _, err := w.Write(b); err != nil {
			log.LogNoRequestID("failed to write HTTP response", "path", req.URL.RawPath)
		}
	}
}
