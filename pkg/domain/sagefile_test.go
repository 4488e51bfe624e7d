package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSageFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref_0.png")
	require.NoError(t, os.WriteFile(refPath, []byte("png"), 0o644))

	original := &SageFile{
		ProjectName:        "dungeon",
		Version:            "1.0",
		CreatedAt:          "2025-01-15T09:00:00",
		ProjectDescription: "A pixel-art dungeon crawler.",
		Keywords:           "dungeon, pixel art",
		Camera:             "side view",
		ReferenceImages:    []string{refPath},
	}

	fpath := filepath.Join(dir, "dungeon.sage")
	require.NoError(t, original.Save(fpath))

	t.Run("歴史的なキー名で保存される", func(t *testing.T) {
		data, err := os.ReadFile(fpath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Project Name":"dungeon"`)
		assert.Contains(t, string(data), `"Project Description"`)
		assert.Contains(t, string(data), `"Reference Images":["ref_0.png"]`)
		assert.Contains(t, string(data), `"lastSaved"`)
		assert.NotContains(t, string(data), dir)
	})

	t.Run("保存時に lastSaved が更新される", func(t *testing.T) {
		assert.NotEmpty(t, original.LastSaved)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`, original.LastSaved)
	})

	t.Run("読み込み時に参照画像が絶対化される", func(t *testing.T) {
		loaded, err := LoadSageFile(fpath)
		require.NoError(t, err)

		assert.Equal(t, original.ProjectName, loaded.ProjectName)
		assert.Equal(t, original.Version, loaded.Version)
		assert.Equal(t, original.CreatedAt, loaded.CreatedAt)
		assert.Equal(t, original.ProjectDescription, loaded.ProjectDescription)
		assert.Equal(t, original.Keywords, loaded.Keywords)
		assert.Equal(t, original.Camera, loaded.Camera)
		require.Len(t, loaded.ReferenceImages, 1)
		assert.Equal(t, refPath, loaded.ReferenceImages[0])
	})
}

func TestLoadSageFile_Errors(t *testing.T) {
	t.Run("存在しないファイルはエラーを返す", func(t *testing.T) {
		_, err := LoadSageFile(filepath.Join(t.TempDir(), "missing.sage"))
		assert.Error(t, err)
	})

	t.Run("不正な JSON はエラーを返す", func(t *testing.T) {
		dir := t.TempDir()
		fpath := filepath.Join(dir, "broken.sage")
		require.NoError(t, os.WriteFile(fpath, []byte("{not json"), 0o644))

		_, err := LoadSageFile(fpath)
		assert.Error(t, err)
	})
}

func TestSageFile_Theme(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ref.png")
	require.NoError(t, os.WriteFile(existing, []byte("png"), 0o644))

	sg := &SageFile{
		ProjectDescription: "A pixel-art dungeon crawler.",
		Keywords:           "dungeon, pixel art",
		Camera:             "side view",
		ReferenceImages:    []string{existing, filepath.Join(dir, "missing.png"), ""},
	}

	theme := sg.Theme()

	t.Run("プロジェクト設定がテーマに写される", func(t *testing.T) {
		assert.Equal(t, "A pixel-art dungeon crawler.", theme.StylePrompt)
		assert.Equal(t, "dungeon, pixel art", theme.Keywords)
		assert.Equal(t, "side view", theme.Camera)
	})

	t.Run("存在しない参照画像は除外される", func(t *testing.T) {
		assert.Equal(t, []string{existing}, theme.ReferenceURLs)
	})
}
