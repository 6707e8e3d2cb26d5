package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWarmer struct {
	calls int
	count int
	err   error
}

func (f *fakeWarmer) WarmCache(ctx context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

type recordedJob struct {
	task string
	err  error
}

type fakeRecorder struct {
	jobs []recordedJob
}

func (f *fakeRecorder) RecordJob(task string, err error) {
	f.jobs = append(f.jobs, recordedJob{task: task, err: err})
}

func TestNewCacheWarmTaskEncodesPayload(t *testing.T) {
	task, err := NewCacheWarmTask(CacheWarmPayload{Version: 7, Reason: "bump"})
	require.NoError(t, err)
	assert.Equal(t, TaskSupplierCacheWarm, task.Type())

	var payload CacheWarmPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, CacheWarmPayload{Version: 7, Reason: "bump"}, payload)
}

func TestNewCacheWarmTaskDefaultsReason(t *testing.T) {
	task, err := NewCacheWarmTask(CacheWarmPayload{})
	require.NoError(t, err)

	payload, err := decodeCacheWarmPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "manual", payload.Reason)
}

func TestCacheWarmJobHandle(t *testing.T) {
	warmer := &fakeWarmer{count: 3}
	recorder := &fakeRecorder{}
	job := NewCacheWarmJob(warmer, nil, recorder)

	task, err := NewCacheWarmTask(CacheWarmPayload{Reason: "test"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.calls)
	require.Len(t, recorder.jobs, 1)
	assert.Equal(t, TaskSupplierCacheWarm, recorder.jobs[0].task)
	assert.NoError(t, recorder.jobs[0].err)
}

func TestCacheWarmJobPropagatesWarmerError(t *testing.T) {
	boom := errors.New("redis down")
	recorder := &fakeRecorder{}
	job := NewCacheWarmJob(&fakeWarmer{err: boom}, nil, recorder)

	err := job.Handle(context.Background(), asynq.NewTask(TaskSupplierCacheWarm, nil))
	require.ErrorIs(t, err, boom)
	require.Len(t, recorder.jobs, 1)
	assert.ErrorIs(t, recorder.jobs[0].err, boom)
}

func TestCacheWarmJobSkipsRetryOnMalformedPayload(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewCacheWarmJob(warmer, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskSupplierCacheWarm, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, warmer.calls)
}

func TestCacheWarmJobTaskHandler(t *testing.T) {
	h := NewCacheWarmJob(&fakeWarmer{}, nil, nil).TaskHandler()
	assert.Equal(t, TaskSupplierCacheWarm, h.Type)
	assert.NotNil(t, h.Handler)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.Error(t, err)
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}

func TestNewTaskIDIsUnique(t *testing.T) {
	a, b := NewTaskID(), NewTaskID()
	require.Equal(t, asynq.TaskIDOpt, a.Type())

	idA, ok := a.Value().(string)
	require.True(t, ok)
	_, err := uuid.Parse(idA)
	require.NoError(t, err)
	assert.NotEqual(t, a.Value(), b.Value())
}
