package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipforge/internal/types"
)

// SaveVideo upserts a video record by its VideoId.
func SaveVideo(video *types.Video) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing types.Video
	result := DB.Where("video_id = ?", video.VideoId).First(&existing)

	if result.Error == nil {
		video.Id = existing.Id
		return DB.Save(video).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(video).Error
	}
	return result.Error
}

func GetVideo(videoId string) (*types.Video, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var video types.Video
	if err := DB.Where("video_id = ?", videoId).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func DeleteVideo(videoId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("video_id = ?", videoId).Delete(&types.Video{}).Error
}
