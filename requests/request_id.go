// Package requests provides the one helper every handler needs: a
// stable per-request identifier threaded through logging, job records,
// and error responses.
package requests

import (
	"net/http"

	"github.com/videoedit/ai-edit-api/config"
)

const requestIDHeader = "X-Request-Id"

// GetRequestID returns req's request ID, generating and stamping one
// onto the request's headers if the caller didn't supply one.
func GetRequestID(req *http.Request) string {
	requestID := req.Header.Get(requestIDHeader)
	if requestID != "" {
		return requestID
	}
	requestID = config.RandomTrailer(8)
	req.Header.Set(requestIDHeader, requestID)
	return requestID
}
