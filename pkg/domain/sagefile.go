package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SageFile は .sage プロジェクトファイル（JSON）のディスク上表現です。
// 歴史的経緯によりキー名の大文字・小文字が混在しています（互換性のため維持）。
type SageFile struct {
	ProjectName        string   `json:"Project Name"`
	Version            string   `json:"version"`
	CreatedAt          string   `json:"createdAt"`
	ProjectDescription string   `json:"Project Description"`
	Keywords           string   `json:"Keywords"`
	Camera             string   `json:"Camera"`
	ReferenceImages    []string `json:"Reference Images"`
	LastSaved          string   `json:"lastSaved"`
}

// LoadSageFile は .sage プロジェクトを読み込み、参照画像をファイルの
// 置かれたディレクトリ基準の絶対パスへ解決します。
func LoadSageFile(fpath string) (*SageFile, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトファイルの読み込みに失敗しました: %w", err)
	}
	var sg SageFile
	if err := json.Unmarshal(data, &sg); err != nil {
		return nil, fmt.Errorf("プロジェクトファイルのパースに失敗しました: %w", err)
	}
	dir := filepath.Dir(fpath)
	for i, ref := range sg.ReferenceImages {
		if ref != "" && !filepath.IsAbs(ref) {
			sg.ReferenceImages[i] = filepath.Join(dir, ref)
		}
	}
	return &sg, nil
}

// Save は現在の状態を JSON として書き出します。参照画像はファイルの
// 置かれるディレクトリからの相対パスに変換し、lastSaved を更新します。
func (sg *SageFile) Save(fpath string) error {
	dir := filepath.Dir(fpath)
	out := *sg
	out.ReferenceImages = make([]string, len(sg.ReferenceImages))
	for i, ref := range sg.ReferenceImages {
		rel, err := filepath.Rel(dir, ref)
		if err != nil {
			return fmt.Errorf("参照画像パスの相対化に失敗しました: %w", err)
		}
		out.ReferenceImages[i] = filepath.ToSlash(rel)
	}
	out.LastSaved = time.Now().Format("2006-01-02T15:04:05")
	data, err := json.Marshal(&out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fpath, data, 0o644); err != nil {
		return err
	}
	sg.LastSaved = out.LastSaved
	return nil
}

// Theme はプロジェクト設定を生成要求向けの ThemeDescriptor へ変換します。
// 存在しない参照画像は除外します。
func (sg *SageFile) Theme() ThemeDescriptor {
	refs := make([]string, 0, len(sg.ReferenceImages))
	for _, ref := range sg.ReferenceImages {
		if ref == "" {
			continue
		}
		if info, err := os.Stat(ref); err != nil || info.IsDir() {
			continue
		}
		refs = append(refs, ref)
	}
	return ThemeDescriptor{
		StylePrompt:   sg.ProjectDescription,
		Keywords:      sg.Keywords,
		Camera:        sg.Camera,
		ReferenceURLs: refs,
	}
}
