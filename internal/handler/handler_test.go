package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipforge/config"
	"clipforge/internal/broadcast"
	"clipforge/internal/dto"
	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeDispatcher struct {
	err        error
	dispatched []string
}

func (d *fakeDispatcher) Dispatch(jobId string) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, jobId)
	return nil
}

func setupHandler(t *testing.T, dispatcher Dispatcher) (*gin.Engine, *service.Service) {
	t.Helper()

	config.Conf = config.Config{
		Policy: config.Policy{
			MaxSourceDurationSeconds: 600,
			MaxSourceHeight:          1080,
			MinClipSeconds:           1,
			MaxClipSeconds:           8,
			MaxCaptionLength:         100,
			ProbeTimeoutSeconds:      15,
			RenderTimeoutSeconds:     300,
			MaxConcurrentRenders:     2,
		},
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&types.Video{}, &types.RenderJob{}, &types.TranscriptSegment{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	original := storage.DB
	storage.DB = db
	t.Cleanup(func() { storage.DB = original })

	workDir := t.TempDir()
	svc := &service.Service{
		Broadcaster: broadcast.New(),
		UploadRoot:  filepath.Join(workDir, "uploads"),
		TempRoot:    filepath.Join(workDir, "temp"),
		ClipRoot:    filepath.Join(workDir, "gifs"),
	}

	hdl := NewHandler(svc, dispatcher)
	engine := gin.New()
	engine.GET("/api/health", hdl.Health)
	engine.POST("/api/clip", hdl.CreateClip)
	engine.GET("/api/clip/:jobId", hdl.GetJob)
	engine.GET("/api/clips", hdl.ListJobs)
	engine.POST("/api/clip/:jobId/cancel", hdl.CancelJob)
	engine.GET("/api/clip/:jobId/download", hdl.DownloadClip)

	return engine, svc
}

func storeTestVideo(t *testing.T, videoId string, duration float64) {
	t.Helper()

	if err := storage.SaveVideo(&types.Video{
		VideoId:  videoId,
		Filename: videoId + ".mp4",
		Path:     filepath.Join(t.TempDir(), videoId+".mp4"),
		Duration: duration,
		Width:    1280,
		Height:   720,
	}); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	engine, _ := setupHandler(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"error":0`)
}

func TestCreateClipDispatchesJob(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	engine, _ := setupHandler(t, dispatcher)
	storeTestVideo(t, "vid-1", 30)

	w := postJSON(t, engine, "/api/clip", dto.CreateClipReq{
		VideoId:   "vid-1",
		StartTime: 2,
		EndTime:   6,
		Quality:   "high",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var res dto.CreateClipRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(0), res.Error)
	assert.NotNil(t, res.Data)
	assert.NotEmpty(t, res.Data.JobId)
	assert.Equal(t, []string{res.Data.JobId}, dispatcher.dispatched)

	job, err := storage.GetJob(res.Data.JobId)
	assert.NoError(t, err)
	assert.Equal(t, types.JobStatusPending, job.Status)
}

func TestCreateClipRejectsMissingVideoId(t *testing.T) {
	engine, _ := setupHandler(t, &fakeDispatcher{})

	w := postJSON(t, engine, "/api/clip", gin.H{"start_time": 0, "end_time": 5})

	var res dto.CreateClipRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}

func TestCreateClipRejectsInvalidRange(t *testing.T) {
	engine, _ := setupHandler(t, &fakeDispatcher{})
	storeTestVideo(t, "vid-1", 30)

	w := postJSON(t, engine, "/api/clip", dto.CreateClipReq{
		VideoId:   "vid-1",
		StartTime: 5,
		EndTime:   25, // exceeds the 8 second clip cap
	})

	var res dto.CreateClipRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}

func TestCreateClipFailsJobWhenDispatchFails(t *testing.T) {
	engine, _ := setupHandler(t, &fakeDispatcher{err: assert.AnError})
	storeTestVideo(t, "vid-1", 30)

	w := postJSON(t, engine, "/api/clip", dto.CreateClipReq{
		VideoId:   "vid-1",
		StartTime: 0,
		EndTime:   4,
	})

	var res dto.CreateClipRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(apperrors.CodeQueueFull), res.Error)

	// The persisted job must not stay pending forever.
	jobs, err := storage.ListJobs("vid-1", 10)
	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, types.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, types.FailReasonCancelled, jobs[0].FailReason)
}

func TestGetJobNotFound(t *testing.T) {
	engine, _ := setupHandler(t, &fakeDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/clip/nope", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var res dto.JobStatusRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(apperrors.CodeNotFound), res.Error)
}

func TestCancelJobEndpoint(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	engine, svc := setupHandler(t, dispatcher)
	storeTestVideo(t, "vid-1", 30)

	created, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: "vid-1", StartTime: 0, EndTime: 4})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/clip/"+created.JobId+"/cancel", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	job, err := storage.GetJob(created.JobId)
	assert.NoError(t, err)
	assert.Equal(t, types.JobStatusFailed, job.Status)
	assert.Equal(t, types.FailReasonCancelled, job.FailReason)
}

func TestListJobsEndpoint(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	engine, svc := setupHandler(t, dispatcher)
	storeTestVideo(t, "vid-1", 30)
	storeTestVideo(t, "vid-2", 30)

	for _, videoId := range []string{"vid-1", "vid-1", "vid-2"} {
		_, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: videoId, StartTime: 0, EndTime: 4})
		assert.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/clips?video_id=vid-1", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var res dto.JobListRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(0), res.Error)
	assert.Len(t, res.Data, 2)
}

func TestDownloadClipRequiresCompletedJob(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	engine, svc := setupHandler(t, dispatcher)
	storeTestVideo(t, "vid-1", 30)

	created, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: "vid-1", StartTime: 0, EndTime: 4})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/clip/"+created.JobId+"/download", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var res dto.JobStatusRes
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}
