package ffmpeg

import (
	"fmt"
	"strings"

	"clipforge/internal/types"
)

// FilterBuilder assembles a video filter chain stage by stage, so the
// graph stays inspectable instead of being one opaque format string.
type FilterBuilder struct {
	stages []string
}

func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

func (b *FilterBuilder) Fps(fps int) *FilterBuilder {
	b.stages = append(b.stages, fmt.Sprintf("fps=%d", fps))
	return b
}

// Scale sets the output width, keeping aspect ratio. lanczos keeps
// detail at GIF-sized outputs.
func (b *FilterBuilder) Scale(width int) *FilterBuilder {
	b.stages = append(b.stages, fmt.Sprintf("scale=%d:-1:flags=lanczos", width))
	return b
}

func (b *FilterBuilder) Drawtext(caption string, style types.CaptionStyle) *FilterBuilder {
	if caption == "" {
		return b
	}

	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = 24
	}
	fontColor := style.FontColor
	if fontColor == "" {
		fontColor = "white"
	}
	boxColor := style.BoxColor
	if boxColor == "" {
		boxColor = "black@0.5"
	}
	y := "h-text_h-10"
	if style.Position == "top" {
		y = "10"
	}

	b.stages = append(b.stages, fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=%s:box=1:boxcolor=%s:boxborderw=5:x=(w-text_w)/2:y=%s",
		EscapeDrawtext(caption), fontSize, fontColor, boxColor, y))
	return b
}

func (b *FilterBuilder) Raw(stage string) *FilterBuilder {
	b.stages = append(b.stages, stage)
	return b
}

func (b *FilterBuilder) Build() string {
	return strings.Join(b.stages, ",")
}

var drawtextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`%`, `\%`,
	`,`, `\,`,
)

// EscapeDrawtext escapes caption text for use inside a quoted drawtext
// value, so user captions cannot break out of the filter graph.
func EscapeDrawtext(text string) string {
	return drawtextEscaper.Replace(text)
}

// baseFilter is the shared fps/scale/caption chain used by both render
// passes. Palette generation must see the exact frames paletteuse will
// color, captions included.
func baseFilter(settings types.TierSettings, caption string, style types.CaptionStyle) *FilterBuilder {
	return NewFilterBuilder().
		Fps(settings.FrameRate).
		Scale(settings.Scale).
		Drawtext(caption, style)
}

// PaletteGenFilter is the pass-one chain ending in palettegen.
func PaletteGenFilter(settings types.TierSettings, caption string, style types.CaptionStyle) string {
	return baseFilter(settings, caption, style).
		Raw("palettegen=stats_mode=diff").
		Build()
}

// PaletteUseFilter is the pass-two filter_complex applying the palette
// with dithering.
func PaletteUseFilter(settings types.TierSettings, caption string, style types.CaptionStyle) string {
	return fmt.Sprintf("[0:v]%s[x];[x][1:v]paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
		baseFilter(settings, caption, style).Build())
}
