package api

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/orchestrator"
)

func TestInitServer(t *testing.T) {
	require := require.New(t)
	jobRunner := jobs.NewRunner(nil)
	router := NewAIEditAPIRouter(config.Cli{}, jobRunner, nil, &orchestrator.Runner{})

	handle, _, _ := router.Lookup("GET", "/ok")
	require.NotNil(handle)

	handle, _, _ = router.Lookup("POST", "/ai-edit/generate")
	require.NotNil(handle)

	handle, _, _ = router.Lookup("GET", "/ai-edit/plan/:job_id")
	require.NotNil(handle)

	handle, _, _ = router.Lookup("POST", "/ai-edit/apply/:job_id")
	require.NotNil(handle)

	handle, _, _ = router.Lookup("GET", "/edit/:edit_job_id")
	require.NotNil(handle)
}
