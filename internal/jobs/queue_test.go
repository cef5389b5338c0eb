package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Enqueue_DeduplicatesSameKey(t *testing.T) {
	q := NewQueue(2, nil)

	jobA, createdA := q.Enqueue(EnqueueRequest{
		Source:    "api",
		DedupeKey: "https://youtube.example/watch?v=abc|vi",
	})
	jobB, createdB := q.Enqueue(EnqueueRequest{
		Source:    "cli",
		DedupeKey: "https://youtube.example/watch?v=abc|vi",
	})

	require.True(t, createdA)
	require.False(t, createdB)
	require.NotNil(t, jobA)
	require.NotNil(t, jobB)
	assert.Equal(t, jobA.ID, jobB.ID)
}

func TestQueue_RunsExecutorAndRecordsVideoID(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(func(_ context.Context, job *ImportJob, report ProgressFunc) (int64, error) {
		report("downloading_captions", "fetching caption tracks")
		return 42, nil
	})
	defer q.Stop()

	job, created := q.Enqueue(EnqueueRequest{
		Source:    "api",
		DedupeKey: "video-42",
		Payload:   JobPayload{SourceURL: "https://youtube.example/watch?v=x", TargetLanguage: "vi"},
	})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(job.ID)
		return ok && got.Status == StatusSuccess
	}, time.Second, 10*time.Millisecond)

	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, int64(42), got.VideoID)
	assert.Equal(t, "downloading_captions", got.Stage)
}

func TestQueue_MarksFailureAndAllowsRetry(t *testing.T) {
	q := NewQueue(1, nil)

	var attempts int
	q.Start(func(_ context.Context, _ *ImportJob, _ ProgressFunc) (int64, error) {
		attempts++
		if attempts == 1 {
			return 0, assert.AnError
		}
		return 7, nil
	})
	defer q.Stop()

	first, created := q.Enqueue(EnqueueRequest{Source: "api", DedupeKey: "retry-key"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(first.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	got, _ := q.Get(first.ID)
	assert.Equal(t, assert.AnError.Error(), got.Error)
	assert.Equal(t, "error", got.Stage)
	assert.Equal(t, assert.AnError.Error(), got.Message)

	second, created := q.Enqueue(EnqueueRequest{Source: "api", DedupeKey: "retry-key"})
	require.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	require.Eventually(t, func() bool {
		got, ok := q.Get(second.ID)
		return ok && got.Status == StatusSuccess
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_ListSortedByCreation(t *testing.T) {
	q := NewQueue(1, nil)

	a, _ := q.Enqueue(EnqueueRequest{Source: "api", DedupeKey: "a"})
	time.Sleep(2 * time.Millisecond)
	b, _ := q.Enqueue(EnqueueRequest{Source: "api", DedupeKey: "b"})

	listed := q.List()
	require.Len(t, listed, 2)
	assert.Equal(t, a.ID, listed[0].ID)
	assert.Equal(t, b.ID, listed[1].ID)
}

type memoryStore struct {
	mu   sync.Mutex
	jobs map[string]*ImportJob
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: make(map[string]*ImportJob)}
}

func (m *memoryStore) LoadJobs(context.Context) ([]*ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*ImportJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		ret = append(ret, cloneJob(job))
	}
	return ret, nil
}

func (m *memoryStore) UpsertJob(_ context.Context, job *ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *memoryStore) DeleteJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
	return nil
}

func (m *memoryStore) status(jobID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		return job.Status
	}
	return ""
}

func TestQueue_HydrateResetsRunningToPending(t *testing.T) {
	store := newMemoryStore()
	store.jobs["abc"] = &ImportJob{
		ID:        "abc",
		Source:    "api",
		DedupeKey: "k",
		Status:    StatusRunning,
		Stage:     "translating",
		CreatedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now().Add(-time.Minute),
	}

	q := NewQueue(1, store)
	got, ok := q.Get("abc")
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.Stage)
	// Re-queued job must run once workers start.
	q.Start(func(_ context.Context, _ *ImportJob, _ ProgressFunc) (int64, error) {
		return 1, nil
	})
	defer q.Stop()

	require.Eventually(t, func() bool {
		return store.status("abc") == StatusSuccess
	}, time.Second, 10*time.Millisecond)
}
