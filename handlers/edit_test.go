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
)

func TestEditReturnsNotFoundForUnknownJob(t *testing.T) {
	d := newTestHandlers(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/edit/missing", nil)

	d.Edit()(rec, req, httprouter.Params{{Key: "edit_job_id", Value: "missing"}})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditReturnsPublicURLsOnceCompleted(t *testing.T) {
	d := newTestHandlers(t)
	store := d.Store.(*memStore)
	now := time.Now()

	output, err := json.Marshal(applyJobOutput{PublicURLs: []string{"https://cdn.example.com/out.mp4"}})
	require.NoError(t, err)
	require.NoError(t, store.Create(&jobs.Job{ID: "edit1", Kind: jobKindApply, Status: jobs.StatusCompleted, Output: output, CreatedAt: now, UpdatedAt: now}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/edit/edit1", nil)
	d.Edit()(rec, req, httprouter.Params{{Key: "edit_job_id", Value: "edit1"}})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp editResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"https://cdn.example.com/out.mp4"}, resp.PublicURLs)
}
