package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clipforge/internal/dto"
	"clipforge/internal/ffmpeg"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

func TestCreateClipJobPersistsPending(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r1", 60)

	res, err := svc.CreateClipJob(dto.CreateClipReq{
		VideoId:   "vid-r1",
		StartTime: 10,
		EndTime:   15,
		Caption:   "nice",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.JobId)

	job, err := storage.GetJob(res.JobId)
	assert.NoError(t, err)
	assert.Equal(t, types.JobStatusPending, job.Status)
	assert.Equal(t, types.QualityMedium, job.Quality, "empty quality defaults to medium")
	assert.Equal(t, 0, job.ProgressPct)
	assert.NotZero(t, job.CreateTime)
}

func TestCreateClipJobPersistsCaptionStyle(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r7", 60)

	style := types.CaptionStyle{
		FontSize:  40,
		FontColor: "yellow",
		BoxColor:  "black@0.8",
		Position:  "top",
	}
	res, err := svc.CreateClipJob(dto.CreateClipReq{
		VideoId:      "vid-r7",
		StartTime:    0,
		EndTime:      5,
		Caption:      "styled",
		CaptionStyle: style,
	})
	assert.NoError(t, err)

	job, err := storage.GetJob(res.JobId)
	assert.NoError(t, err)
	assert.Equal(t, style, job.CaptionStyle())

	// The persisted style drives the drawtext stage of the render filters.
	filter := ffmpeg.PaletteGenFilter(
		types.ResolveTier(job.Quality, job.FrameRate, job.Scale),
		job.Caption, job.CaptionStyle())
	assert.Contains(t, filter, "fontsize=40")
	assert.Contains(t, filter, "fontcolor=yellow")
	assert.Contains(t, filter, "boxcolor=black@0.8")
	assert.Contains(t, filter, "y=10")
}

func TestCreateClipJobValidation(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r2", 60)

	longCaption := make([]byte, 101)
	for i := range longCaption {
		longCaption[i] = 'x'
	}

	tests := []struct {
		name string
		req  dto.CreateClipReq
	}{
		{"unknown video", dto.CreateClipReq{VideoId: "nope", StartTime: 0, EndTime: 5}},
		{"negative start", dto.CreateClipReq{VideoId: "vid-r2", StartTime: -1, EndTime: 4}},
		{"end before start", dto.CreateClipReq{VideoId: "vid-r2", StartTime: 10, EndTime: 8}},
		{"too short", dto.CreateClipReq{VideoId: "vid-r2", StartTime: 10, EndTime: 10.5}},
		{"too long", dto.CreateClipReq{VideoId: "vid-r2", StartTime: 0, EndTime: 15}},
		{"past video end", dto.CreateClipReq{VideoId: "vid-r2", StartTime: 57, EndTime: 62}},
		{"caption too long", dto.CreateClipReq{VideoId: "vid-r2", StartTime: 0, EndTime: 5, Caption: string(longCaption)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateClipJob(tt.req)
			assert.Error(t, err)
		})
	}
}

func TestCancelPendingJobFailsWithCancelledCause(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r3", 60)

	res, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: "vid-r3", StartTime: 0, EndTime: 5})
	assert.NoError(t, err)

	assert.NoError(t, svc.CancelJob(res.JobId))

	job, err := storage.GetJob(res.JobId)
	assert.NoError(t, err)
	assert.Equal(t, types.JobStatusFailed, job.Status)
	assert.Equal(t, types.FailReasonCancelled, job.FailReason)
}

func TestCancelTerminalJobRejected(t *testing.T) {
	svc := setupTestEnv(t)

	if err := storage.SaveJob(&types.RenderJob{
		JobId:  "done-job",
		Status: types.JobStatusCompleted,
	}); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	err := svc.CancelJob("done-job")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
}

func TestProcessRenderJobSkipsCancelledJob(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r4", 60)

	res, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: "vid-r4", StartTime: 0, EndTime: 5})
	assert.NoError(t, err)
	assert.NoError(t, svc.CancelJob(res.JobId))

	// A worker picking up an already-cancelled job is a no-op.
	assert.NoError(t, svc.ProcessRenderJob(res.JobId))

	job, _ := storage.GetJob(res.JobId)
	assert.Equal(t, types.JobStatusFailed, job.Status)
}

func TestListJobsScopedToVideo(t *testing.T) {
	svc := setupTestEnv(t)
	storeTestVideo(t, "vid-r5", 60)
	storeTestVideo(t, "vid-r6", 60)

	for _, videoId := range []string{"vid-r5", "vid-r5", "vid-r6"} {
		_, err := svc.CreateClipJob(dto.CreateClipReq{VideoId: videoId, StartTime: 0, EndTime: 5})
		assert.NoError(t, err)
	}

	scoped, err := svc.ListJobs("vid-r5", 10)
	assert.NoError(t, err)
	assert.Len(t, scoped, 2)

	all, err := svc.ListJobs("", 10)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	for _, job := range all {
		assert.Equal(t, "pending", job.Status)
	}
}
