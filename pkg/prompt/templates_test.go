package prompt

import (
	"strings"
	"testing"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var testTheme = domain.ThemeDescriptor{
	StylePrompt: "A dark fantasy dungeon crawler.",
	Keywords:    "pixel art, 16x16, moody",
	Camera:      "side view",
}

func TestBaseSprite(t *testing.T) {
	t.Run("テーマとスプライト説明が含まれる", func(t *testing.T) {
		p := BaseSprite(testTheme, "a slime monster")

		assert.Contains(t, p, "A dark fantasy dungeon crawler.")
		assert.Contains(t, p, "Keywords: pixel art, 16x16, moody")
		assert.Contains(t, p, "'a slime monster'")
		assert.Contains(t, p, "plain white background")
		assert.Contains(t, p, "Camera Perspective/Viewing Angle: side view")
	})

	t.Run("空のテーマ欄は出力されない", func(t *testing.T) {
		p := BaseSprite(domain.ThemeDescriptor{}, "a slime")

		assert.NotContains(t, p, "Project Description:")
		assert.NotContains(t, p, "Keywords:")
		assert.NotContains(t, p, "Camera Perspective")
	})
}

func TestNextFrame(t *testing.T) {
	p := NextFrame(testTheme, "walk")

	assert.Contains(t, p, "Animation: walk")
	assert.Contains(t, p, "next sprite image for the animation sequence")
	assert.Contains(t, p, "Camera Perspective/Viewing Angle: side view")
}

func TestBetweenFrames(t *testing.T) {
	p := BetweenFrames(testTheme, "attack")

	assert.Contains(t, p, "attack animation")
	assert.Contains(t, p, "midway pose")
	assert.Contains(t, p, `"in-between" frame`)
}

func TestReferenceImage(t *testing.T) {
	p := ReferenceImage(testTheme)

	assert.Contains(t, p, "reference or style image")
	assert.Contains(t, p, "A dark fantasy dungeon crawler.")
}

func TestAnimationSuggestion(t *testing.T) {
	p := AnimationSuggestion(testTheme, "a slime monster", []string{"idle", "walk"})

	assert.Contains(t, p, "'a slime monster'")
	assert.Contains(t, p, "[idle, walk]")
	assert.Contains(t, p, "single animation name")
}

func TestProjectDescription(t *testing.T) {
	t.Run("キーワードありは誘導文に埋め込まれる", func(t *testing.T) {
		p := ProjectDescription("pixel art, dungeon")
		assert.Contains(t, p, "Base the description on the following keywords: 'pixel art, dungeon'.")
	})

	t.Run("キーワードなしは自由発想を促す", func(t *testing.T) {
		p := ProjectDescription("  ")
		assert.Contains(t, p, "interesting video game concept")
		assert.NotContains(t, p, "following keywords")
	})
}

func TestKeywords(t *testing.T) {
	p := Keywords("A moody dungeon crawler.")

	assert.Contains(t, p, `"A moody dungeon crawler."`)
	assert.Contains(t, p, "5-10")
	assert.Contains(t, p, "comma separated list")
}

func TestCameraLine(t *testing.T) {
	tests := []struct {
		name   string
		camera string
		empty  bool
	}{
		{"通常指定は行を生成する", "top-down", false},
		{"空文字は抑制される", "", true},
		{"none は抑制される", "none", true},
		{"大文字の None も抑制される", "None", true},
		{"null は抑制される", "null", true},
		{"前後空白は無視される", "  none  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := cameraLine(tt.camera)
			if tt.empty {
				assert.Empty(t, line)
			} else {
				assert.True(t, strings.Contains(line, tt.camera))
			}
		})
	}
}
