package types

// Render job lifecycle. Terminal states are never overwritten.
const (
	JobStatusPending    uint8 = 0
	JobStatusProcessing uint8 = 1
	JobStatusCompleted  uint8 = 2
	JobStatusFailed     uint8 = 3
)

// JobStatusName returns a stable API string for a status value.
func JobStatusName(status uint8) string {
	switch status {
	case JobStatusPending:
		return "pending"
	case JobStatusProcessing:
		return "processing"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminalStatus reports whether a job in this status can still change.
func IsTerminalStatus(status uint8) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// CanTransition reports whether moving a job from one status to another
// is allowed. Terminal states are frozen and a job never moves backwards.
func CanTransition(from, to uint8) bool {
	if IsTerminalStatus(from) {
		return false
	}
	switch from {
	case JobStatusPending:
		return to == JobStatusProcessing || to == JobStatusFailed
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// FailReasonCancelled marks jobs failed through explicit cancellation
// rather than a render error.
const FailReasonCancelled = "cancelled by user"

// RenderJob is a persisted GIF render with its request parameters and
// live progress.
type RenderJob struct {
	Id           int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId        string  `json:"job_id" gorm:"uniqueIndex"`
	VideoId      string  `json:"video_id" gorm:"index"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Quality      string  `json:"quality"`
	FrameRate    int     `json:"frame_rate"`
	Scale        int     `json:"scale"`
	Caption      string  `json:"caption"`
	FontSize     int     `json:"font_size,omitempty"`
	FontColor    string  `json:"font_color,omitempty"`
	BoxColor     string  `json:"box_color,omitempty"`
	CaptionPos   string  `json:"caption_pos,omitempty"`
	Status       uint8   `json:"status"`
	ProgressPct  int     `json:"progress_pct"`
	OutputPath   string  `json:"output_path,omitempty"`
	OutputUrl    string  `json:"output_url,omitempty"`
	FailReason   string  `json:"fail_reason,omitempty"`
	CreateTime   int64   `json:"create_time" gorm:"column:create_time"`
	CompleteTime int64   `json:"complete_time,omitempty" gorm:"column:complete_time"`
}

// CaptionStyle returns the persisted drawtext styling of this job.
func (j RenderJob) CaptionStyle() CaptionStyle {
	return CaptionStyle{
		FontSize:  j.FontSize,
		FontColor: j.FontColor,
		BoxColor:  j.BoxColor,
		Position:  j.CaptionPos,
	}
}

// ProgressEvent is what the broadcaster fans out to progress subscribers.
type ProgressEvent struct {
	JobId      string `json:"job_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	FailReason string `json:"fail_reason,omitempty"`
}
