package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"clipforge/internal/types"
)

func TestEscapeDrawtext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"colon escaped", "time: now", `time\: now`},
		{"single quote escaped", "it's fine", `it\'s fine`},
		{"percent escaped", "100% done", `100\% done`},
		{"backslash escaped", `a\b`, `a\\b`},
		{"comma escaped", "one, two", `one\, two`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeDrawtext(tt.input))
		})
	}
}

func TestFilterBuilderChain(t *testing.T) {
	got := NewFilterBuilder().
		Fps(15).
		Scale(480).
		Build()

	assert.Equal(t, "fps=15,scale=480:-1:flags=lanczos", got)
}

func TestFilterBuilderDrawtext(t *testing.T) {
	got := NewFilterBuilder().
		Drawtext("nice catch", types.CaptionStyle{}).
		Build()

	assert.Contains(t, got, "drawtext=text='nice catch'")
	assert.Contains(t, got, "fontsize=24")
	assert.Contains(t, got, "fontcolor=white")
	assert.Contains(t, got, "y=h-text_h-10")

	top := NewFilterBuilder().
		Drawtext("up here", types.CaptionStyle{Position: "top", FontSize: 32}).
		Build()
	assert.Contains(t, top, "fontsize=32")
	assert.Contains(t, top, "y=10")
}

func TestFilterBuilderDrawtextSkipsEmptyCaption(t *testing.T) {
	got := NewFilterBuilder().
		Fps(10).
		Drawtext("", types.CaptionStyle{}).
		Build()

	assert.Equal(t, "fps=10", got)
}

func TestPaletteFilters(t *testing.T) {
	settings := types.ResolveTier(types.QualityMedium, 0, 0)

	gen := PaletteGenFilter(settings, "", types.CaptionStyle{})
	assert.Equal(t, "fps=15,scale=480:-1:flags=lanczos,palettegen=stats_mode=diff", gen)

	use := PaletteUseFilter(settings, "", types.CaptionStyle{})
	assert.True(t, strings.HasPrefix(use, "[0:v]fps=15,scale=480:-1:flags=lanczos[x]"))
	assert.Contains(t, use, "paletteuse=dither=bayer")
}

func TestPalettePassesShareCaptionChain(t *testing.T) {
	settings := types.ResolveTier(types.QualityHigh, 0, 0)
	style := types.CaptionStyle{}

	gen := PaletteGenFilter(settings, "caption", style)
	use := PaletteUseFilter(settings, "caption", style)

	// Both passes must see the same frames, drawtext included.
	base := strings.TrimSuffix(gen, ",palettegen=stats_mode=diff")
	assert.Contains(t, use, base)
}
