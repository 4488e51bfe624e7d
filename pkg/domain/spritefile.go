package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultFrameDuration は .sprite 定義がフレーム時間を持たないため、
// 読み込み時に割り当てる表示時間です。
const DefaultFrameDuration = 100 * time.Millisecond

// SpriteFile は .sprite 定義ファイル（JSON）のディスク上表現です。
// animations はアニメーション名からフレーム画像の相対パス一覧への写像です。
type SpriteFile struct {
	UUID        string              `json:"uuid"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	BaseImage   string              `json:"base_image"`
	Animations  map[string][]string `json:"animations"`
}

// LoadSpriteFile は .sprite 定義を読み込み、フレームパスを dir 基準の
// 絶対パスへ解決します。
func LoadSpriteFile(fpath, dir string) (*SpriteFile, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("スプライト定義の読み込みに失敗しました: %w", err)
	}
	var sf SpriteFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("スプライト定義のパースに失敗しました: %w", err)
	}
	for name, frames := range sf.Animations {
		resolved := make([]string, len(frames))
		for i, f := range frames {
			resolved[i] = filepath.Join(dir, f)
		}
		sf.Animations[name] = resolved
	}
	if sf.BaseImage != "" {
		sf.BaseImage = filepath.Join(dir, sf.BaseImage)
	}
	return &sf, nil
}

// Save は現在の状態を JSON として書き出します。フレームパスは dir からの
// 相対パスに変換して保存します。
func (sf *SpriteFile) Save(fpath, dir string) error {
	out := SpriteFile{
		UUID:        sf.UUID,
		Name:        sf.Name,
		Description: sf.Description,
		Width:       sf.Width,
		Height:      sf.Height,
		Animations:  make(map[string][]string, len(sf.Animations)),
	}
	for name, frames := range sf.Animations {
		rels := make([]string, len(frames))
		for i, f := range frames {
			rel, err := filepath.Rel(dir, f)
			if err != nil {
				return fmt.Errorf("フレームパスの相対化に失敗しました: %w", err)
			}
			rels[i] = filepath.ToSlash(rel)
		}
		out.Animations[name] = rels
	}
	if sf.BaseImage != "" {
		rel, err := filepath.Rel(dir, sf.BaseImage)
		if err != nil {
			return fmt.Errorf("ベース画像パスの相対化に失敗しました: %w", err)
		}
		out.BaseImage = filepath.ToSlash(rel)
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, data, 0o644)
}

// ToAsset は定義を SpriteAsset へ変換します。複数アニメーションは
// 名前の辞書順でひとつのフレーム列に平坦化します（エクスポート決定性のため、
// 挿入順には依存しません）。
func (sf *SpriteFile) ToAsset() *SpriteAsset {
	asset := &SpriteAsset{
		ID:          sf.UUID,
		Name:        sf.Name,
		Description: sf.Description,
		Width:       sf.Width,
		Height:      sf.Height,
	}
	names := make([]string, 0, len(sf.Animations))
	for name := range sf.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, fp := range sf.Animations[name] {
			asset.Frames = append(asset.Frames, Frame{Path: fp, Duration: DefaultFrameDuration})
		}
	}
	asset.normalize()
	return asset
}
