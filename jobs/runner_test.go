package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[string]*Job)}
}

func (f *fakeStore) Create(j *Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeStore) Get(id string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) Update(j *Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func waitForStatus(t *testing.T, store *fakeStore, id string, want Status) *Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(id)
		if err == nil && j.Status == want {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return nil
}

func TestRunnerCompletesOnFirstSuccess(t *testing.T) {
	store := newFakeStore()
	runner := NewRunner(store)
	runner.Register("noop", func(ctx context.Context, job *Job) error { return nil })

	_, err := runner.Enqueue(context.Background(), "job-1", "noop", nil, 3)
	require.NoError(t, err)

	j := waitForStatus(t, store, "job-1", StatusCompleted)
	require.Equal(t, 0, j.Attempts)
}

func TestRunnerRetriesThenFailsWithTruncatedError(t *testing.T) {
	store := newFakeStore()
	runner := NewRunner(store)
	runner.RetryDelay = time.Millisecond

	longMsg := strings.Repeat("x", 600)
	runner.Register("always-fails", func(ctx context.Context, job *Job) error {
		return errors.New(longMsg)
	})

	_, err := runner.Enqueue(context.Background(), "job-2", "always-fails", nil, 2)
	require.NoError(t, err)

	j := waitForStatus(t, store, "job-2", StatusFailed)
	require.Equal(t, 2, j.Attempts)
	require.Len(t, j.Error, 500)
}

func TestRunnerRecoversFromPanickingHandler(t *testing.T) {
	store := newFakeStore()
	runner := NewRunner(store)
	runner.RetryDelay = time.Millisecond
	runner.Register("panics", func(ctx context.Context, job *Job) error {
		panic("boom")
	})

	_, err := runner.Enqueue(context.Background(), "job-3", "panics", nil, 1)
	require.NoError(t, err)

	j := waitForStatus(t, store, "job-3", StatusFailed)
	require.Contains(t, j.Error, "panic in job handler")
}

func TestEnqueueRejectsUnregisteredKind(t *testing.T) {
	runner := NewRunner(newFakeStore())
	_, err := runner.Enqueue(context.Background(), "job-4", "unknown", nil, 1)
	require.Error(t, err)
}
