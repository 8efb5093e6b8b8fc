package storage

import (
	"errors"

	"clipforge/internal/types"
)

// SaveTranscript replaces all stored segments for a video.
func SaveTranscript(videoId string, segments []types.TranscriptSegment) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	if err := DB.Where("video_id = ?", videoId).Delete(&types.TranscriptSegment{}).Error; err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}
	for i := range segments {
		segments[i].Id = 0
		segments[i].VideoId = videoId
	}
	return DB.Create(&segments).Error
}

// GetTranscript returns stored segments ordered by start time. An empty
// slice means no transcript has been stored.
func GetTranscript(videoId string) ([]types.TranscriptSegment, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var segments []types.TranscriptSegment
	if err := DB.Where("video_id = ?", videoId).Order("start asc").Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}
