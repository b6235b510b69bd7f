package handlers

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/videoedit/ai-edit-api/log"
)

func (d *AIEditHandlersCollection) Ok() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		if _, err := io.WriteString(w, "OK"); err != nil {
			log.LogNoRequestID("failed to write HTTP response", "path", req.URL.RawPath)
		}
	}
}
