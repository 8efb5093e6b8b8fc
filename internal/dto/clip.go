package dto

import "clipforge/internal/types"

// CreateClipReq starts a GIF render for a stored video.
type CreateClipReq struct {
	VideoId      string             `json:"video_id" binding:"required"`
	StartTime    float64            `json:"start_time"`
	EndTime      float64            `json:"end_time"`
	Quality      string             `json:"quality"`
	FrameRate    int                `json:"frame_rate"`
	Scale        int                `json:"scale"`
	Caption      string             `json:"caption"`
	CaptionStyle types.CaptionStyle `json:"caption_style"`
}

type CreateClipResData struct {
	JobId string `json:"job_id"`
}

type CreateClipRes struct {
	Error int32              `json:"error"`
	Msg   string             `json:"msg"`
	Data  *CreateClipResData `json:"data"`
}

// JobStatusResData is the API view of a render job.
type JobStatusResData struct {
	JobId        string  `json:"job_id"`
	VideoId      string  `json:"video_id"`
	Status       string  `json:"status"`
	ProgressPct  int     `json:"progress_pct"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Quality      string  `json:"quality"`
	Caption      string  `json:"caption,omitempty"`
	OutputUrl    string  `json:"output_url,omitempty"`
	FailReason   string  `json:"fail_reason,omitempty"`
	CreateTime   int64   `json:"create_time"`
	CompleteTime int64   `json:"complete_time,omitempty"`
}

type JobStatusRes struct {
	Error int32             `json:"error"`
	Msg   string            `json:"msg"`
	Data  *JobStatusResData `json:"data"`
}

type JobListRes struct {
	Error int32              `json:"error"`
	Msg   string             `json:"msg"`
	Data  []JobStatusResData `json:"data"`
}

// SuggestMomentsReq asks the moment selector for GIF-worthy spans.
type SuggestMomentsReq struct {
	VideoId    string `json:"video_id" binding:"required"`
	MaxResults int    `json:"max_results"`
}

type SuggestMomentsRes struct {
	Error int32                   `json:"error"`
	Msg   string                  `json:"msg"`
	Data  []types.SuggestedMoment `json:"data"`
}

// TranscriptRes returns stored or synthesized transcript segments.
type TranscriptRes struct {
	Error int32                     `json:"error"`
	Msg   string                    `json:"msg"`
	Data  []types.TranscriptSegment `json:"data"`
}

// UploadVideoResData describes an accepted upload after probing.
type UploadVideoResData struct {
	VideoId  string  `json:"video_id"`
	Filename string  `json:"filename"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

type UploadVideoRes struct {
	Error int32               `json:"error"`
	Msg   string              `json:"msg"`
	Data  *UploadVideoResData `json:"data"`
}
