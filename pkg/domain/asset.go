package domain

import (
	"fmt"
	"time"
)

// ThemeDescriptor はスプライト生成の画風・テーマ指定を保持します。
// StylePrompt と Keywords は生成プロンプトに合成され、ReferenceURLs は
// 一貫性保持のための参照画像として各プロバイダに渡されます。
type ThemeDescriptor struct {
	StylePrompt   string   `json:"style_prompt"`
	Keywords      string   `json:"keywords"`
	Camera        string   `json:"camera"`
	ReferenceURLs []string `json:"reference_urls"`
}

// Frame はスプライトのフレーム1枚です。
// Image が nil の場合は Path から画像を解決します（どちらか一方は必須）。
type Frame struct {
	Index    int           `json:"index"`
	Image    []byte        `json:"-"`
	Path     string        `json:"path,omitempty"`
	Duration time.Duration `json:"duration"`
}

// GenerationParams はアセット生成時に使用したパラメータの記録です。
// 再生成やエクスポートの来歴（provenance）として保持します。
type GenerationParams struct {
	Model string `json:"model"`
	Size  string `json:"size"`
	Seed  *int64 `json:"seed,omitempty"`
}

// SpriteAsset はエクスポート単位となるスプライトアセットです。
// Frames の Index は常に 0 始まりの連番であることを不変条件とします。
type SpriteAsset struct {
	ID          string           `json:"uuid"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Frames      []Frame          `json:"frames"`
	Theme       ThemeDescriptor  `json:"theme"`
	Provider    string           `json:"provider"`
	Params      GenerationParams `json:"params"`
}

// InvalidAssetStateError は構造不変条件を壊す操作を拒否したことを示します。
type InvalidAssetStateError struct {
	Reason string
}

func (e *InvalidAssetStateError) Error() string {
	return fmt.Sprintf("invalid asset state: %s", e.Reason)
}

// AddFrame は指定 Index の位置にフレームを挿入します。
// Index が範囲外の場合は末尾に追加され、挿入後に連番へ正規化されます。
func (a *SpriteAsset) AddFrame(f Frame) {
	pos := f.Index
	if pos < 0 || pos > len(a.Frames) {
		pos = len(a.Frames)
	}
	a.Frames = append(a.Frames, Frame{})
	copy(a.Frames[pos+1:], a.Frames[pos:])
	a.Frames[pos] = f
	a.normalize()
}

// ReplaceFrame は指定 Index のフレームを差し替えます。
func (a *SpriteAsset) ReplaceFrame(index int, f Frame) error {
	if index < 0 || index >= len(a.Frames) {
		return &InvalidAssetStateError{Reason: fmt.Sprintf("frame index %d out of range", index)}
	}
	a.Frames[index] = f
	a.normalize()
	return nil
}

// RemoveFrame は指定 Index のフレームを削除します。
// 最後の1枚を削除しようとした場合、空アセットはエクスポート不能となるため
// InvalidAssetStateError を返します。
func (a *SpriteAsset) RemoveFrame(index int) error {
	if index < 0 || index >= len(a.Frames) {
		return &InvalidAssetStateError{Reason: fmt.Sprintf("frame index %d out of range", index)}
	}
	if len(a.Frames) == 1 {
		return &InvalidAssetStateError{Reason: "cannot remove the last remaining frame"}
	}
	a.Frames = append(a.Frames[:index], a.Frames[index+1:]...)
	a.normalize()
	return nil
}

// ReorderFrames は newOrder（現在の Index の並び替え）に従いフレームを並べ替えます。
// newOrder は全 Index をちょうど1回ずつ含む必要があります。
func (a *SpriteAsset) ReorderFrames(newOrder []int) error {
	if len(newOrder) != len(a.Frames) {
		return &InvalidAssetStateError{Reason: "new order length does not match frame count"}
	}
	seen := make(map[int]bool, len(newOrder))
	reordered := make([]Frame, 0, len(a.Frames))
	for _, idx := range newOrder {
		if idx < 0 || idx >= len(a.Frames) || seen[idx] {
			return &InvalidAssetStateError{Reason: fmt.Sprintf("invalid or duplicate index %d in new order", idx)}
		}
		seen[idx] = true
		reordered = append(reordered, a.Frames[idx])
	}
	a.Frames = reordered
	a.normalize()
	return nil
}

// SetTheme はテーマ記述子を差し替えます。
func (a *SpriteAsset) SetTheme(t ThemeDescriptor) {
	a.Theme = t
}

// normalize は Index を 0 始まりの連番に振り直します。
func (a *SpriteAsset) normalize() {
	for i := range a.Frames {
		a.Frames[i].Index = i
	}
}
