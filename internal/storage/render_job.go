package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

// SaveJob upserts a render job by its JobId.
func SaveJob(job *types.RenderJob) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing types.RenderJob
	result := DB.Where("job_id = ?", job.JobId).First(&existing)

	if result.Error == nil {
		job.Id = existing.Id // Preserve ID
		return DB.Save(job).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(job).Error
	}
	return result.Error
}

func GetJob(jobId string) (*types.RenderJob, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var job types.RenderJob
	if err := DB.Where("job_id = ?", jobId).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func ListJobs(videoId string, limit int) ([]types.RenderJob, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	query := DB.Order("create_time desc").Limit(limit)
	if videoId != "" {
		query = query.Where("video_id = ?", videoId)
	}
	var jobs []types.RenderJob
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus moves a job through the lifecycle, refusing illegal
// transitions so terminal states stay frozen. The transition is a single
// guarded UPDATE, so two writers racing for the same job (a cancel
// against a worker pickup) cannot resurrect a terminal state through a
// stale read.
func UpdateJobStatus(jobId string, status uint8, failReason string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	updates := map[string]interface{}{
		"status":      status,
		"fail_reason": failReason,
	}
	if types.IsTerminalStatus(status) {
		updates["complete_time"] = time.Now().Unix()
		if status == types.JobStatusCompleted {
			updates["progress_pct"] = 100
		}
	}

	result := DB.Model(&types.RenderJob{}).
		Where("job_id = ? AND status IN ?", jobId, transitionSources(status)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := GetJob(jobId); err != nil {
			return err
		}
		return apperrors.New(apperrors.CodeInvalidParams, "Illegal job status transition")
	}
	return nil
}

// transitionSources lists the statuses a job may hold for a move to the
// target status to be legal. The result is []int rather than []uint8
// because gorm treats []uint8 as []byte and binds it as a single blob
// instead of expanding the IN list.
func transitionSources(to uint8) []int {
	sources := make([]int, 0, 2)
	for _, from := range []uint8{types.JobStatusPending, types.JobStatusProcessing} {
		if types.CanTransition(from, to) {
			sources = append(sources, int(from))
		}
	}
	return sources
}

// UpdateJobProgress records render progress. Progress never moves
// backwards and is ignored once a job is terminal; both guards live in
// the WHERE clause so a concurrent status change cannot be overwritten.
func UpdateJobProgress(jobId string, progressPct int) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	if progressPct > 100 {
		progressPct = 100
	}
	return DB.Model(&types.RenderJob{}).
		Where("job_id = ? AND status IN ? AND progress_pct < ?",
			jobId, []int{int(types.JobStatusPending), int(types.JobStatusProcessing)}, progressPct).
		Update("progress_pct", progressPct).Error
}

// SetJobOutput records where a finished render landed without touching
// lifecycle fields.
func SetJobOutput(jobId, outputPath, outputUrl string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Model(&types.RenderJob{}).
		Where("job_id = ?", jobId).
		Updates(map[string]interface{}{
			"output_path": outputPath,
			"output_url":  outputUrl,
		}).Error
}

func DeleteJob(jobId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("job_id = ?", jobId).Delete(&types.RenderJob{}).Error
}

// MarkStaleJobs fails every pending or processing job. Called on server
// startup so jobs interrupted by a crash do not stay live forever.
func MarkStaleJobs() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.RenderJob{}).
		Where("status IN ?", []int{int(types.JobStatusPending), int(types.JobStatusProcessing)}).
		Updates(map[string]interface{}{
			"status":        types.JobStatusFailed,
			"fail_reason":   "interrupted by server restart",
			"complete_time": time.Now().Unix(),
		})
	return result.RowsAffected, result.Error
}
