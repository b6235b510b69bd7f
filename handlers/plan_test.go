package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/orchestrator"
)

func TestPlanReturnsNotFoundForUnknownJob(t *testing.T) {
	d := newTestHandlers(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ai-edit/plan/missing", nil)

	d.Plan()(rec, req, httprouter.Params{{Key: "job_id", Value: "missing"}})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanReturnsOutcomeOnceCompleted(t *testing.T) {
	d := newTestHandlers(t)
	store := d.Store.(*memStore)

	outcome := orchestrator.Outcome{PublicURLs: []string{"https://cdn.example.com/out.mp4"}}
	output, err := json.Marshal(generateJobOutput{Outcome: outcome})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, store.Create(&jobs.Job{ID: "j1", Kind: jobKindGenerate, Status: jobs.StatusCompleted, Output: output, CreatedAt: now, UpdatedAt: now}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ai-edit/plan/j1", nil)
	d.Plan()(rec, req, httprouter.Params{{Key: "job_id", Value: "j1"}})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, jobs.StatusCompleted, resp.Status)
	require.NotNil(t, resp.Plan)
}
