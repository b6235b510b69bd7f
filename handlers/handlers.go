// Package handlers implements the thin HTTP ingress described in
// spec.md §6: JSON-schema body validation, request-ID generation, a
// call into the orchestrator/job runner, JSON response marshaling.
// The engineering substance lives in capability, orchestrator, render,
// and jobs — these handlers only marshal.
package handlers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/orchestrator"
)

const (
	jobKindGenerate = "generate"
	jobKindApply    = "apply"
)

// AIEditHandlersCollection wires the orchestrator and job runner into
// httprouter.Handle functions. One instance is built at startup and
// its methods registered against the router.
type AIEditHandlersCollection struct {
	Jobs   *jobs.Runner
	Store  jobs.Store
	Runner *orchestrator.Runner
}

func NewAIEditHandlersCollection(jobRunner *jobs.Runner, store jobs.Store, orchestratorRunner *orchestrator.Runner) *AIEditHandlersCollection {
	d := &AIEditHandlersCollection{Jobs: jobRunner, Store: store, Runner: orchestratorRunner}
	d.registerJobHandlers()
	return d
}

// HasContentType reports whether req's Content-Type header matches
// mimetype, ignoring charset/boundary parameters.
func HasContentType(r *http.Request, mimetype string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return mimetype == "application/octet-stream"
	}

	for _, v := range strings.Split(contentType, ",") {
		t, _, err := mime.ParseMediaType(v)
		if err != nil {
			break
		}
		if t == mimetype {
			return true
		}
	}

	return false
}
