package types

// MediaMetadata holds the probed properties of an uploaded video.
type MediaMetadata struct {
	Duration float64 `json:"duration"` // seconds
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"` // bytes
}

// Quality tiers map to a frame rate and output width. Explicit FrameRate
// or Scale values on a request override the tier.
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
)

// TierSettings is the resolved frame rate and scale width for a render.
type TierSettings struct {
	FrameRate int
	Scale     int
}

var qualityTiers = map[string]TierSettings{
	QualityLow:    {FrameRate: 10, Scale: 320},
	QualityMedium: {FrameRate: 15, Scale: 480},
	QualityHigh:   {FrameRate: 20, Scale: 720},
}

// ResolveTier returns the settings for a quality name, falling back to
// medium for unknown or empty names, then applies explicit overrides.
func ResolveTier(quality string, frameRate, scale int) TierSettings {
	settings, ok := qualityTiers[quality]
	if !ok {
		settings = qualityTiers[QualityMedium]
	}
	if frameRate > 0 {
		settings.FrameRate = frameRate
	}
	if scale > 0 {
		settings.Scale = scale
	}
	return settings
}

// CaptionStyle controls drawtext rendering of the caption overlay.
type CaptionStyle struct {
	FontSize  int    `json:"font_size,omitempty"`
	FontColor string `json:"font_color,omitempty"`
	BoxColor  string `json:"box_color,omitempty"`
	Position  string `json:"position,omitempty"` // "top" or "bottom"
}

// ClipRequest describes one GIF render.
type ClipRequest struct {
	VideoID      string       `json:"video_id"`
	StartTime    float64      `json:"start_time"`
	EndTime      float64      `json:"end_time"`
	Quality      string       `json:"quality,omitempty"`
	FrameRate    int          `json:"frame_rate,omitempty"`
	Scale        int          `json:"scale,omitempty"`
	Caption      string       `json:"caption,omitempty"`
	CaptionStyle CaptionStyle `json:"caption_style,omitempty"`
}

// TranscriptSegment is one timed text span of a video transcript.
type TranscriptSegment struct {
	Id      int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	VideoId string  `json:"-" gorm:"index"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// SuggestedMoment is one validated LLM clip suggestion.
type SuggestedMoment struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Caption    string  `json:"caption"`
	Confidence float64 `json:"confidence"`
}

// Video is a stored upload with its probed metadata.
type Video struct {
	Id         int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	VideoId    string  `json:"video_id" gorm:"uniqueIndex"`
	Filename   string  `json:"filename"`
	Path       string  `json:"-"`
	Duration   float64 `json:"duration"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
	CreateTime int64   `json:"create_time" gorm:"column:create_time"`
}
