package godot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/imgutil"
)

// ExportArtifact はエクスポートで生成されたファイルパスと、アセット内容から
// 導出された安定識別子の割り当てです。
type ExportArtifact struct {
	ScenePath    string
	ResourcePath string
	SheetPath    string

	SceneUID    string
	ResourceUID string
	TextureUID  string
	FrameUIDs   []string
}

// Exporter は SpriteAsset を Godot 4 のシーン（.tscn）とリソース（.tres）へ
// 決定的に直列化します。内容に変更のないアセットを再エクスポートすると
// バイト単位で同一の出力になります。
type Exporter struct {
	outputDir string
}

// NewExporter は出力先ディレクトリを用意して Exporter を初期化します。
func NewExporter(outputDir string) (*Exporter, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("outputDir is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &ExportIOError{Path: outputDir, Err: err}
	}
	return &Exporter{outputDir: outputDir}, nil
}

// collected は CollectResources の結果です。フレームは Index 昇順で、
// 内容ハッシュとシートの配置情報を保持します。
type collected struct {
	frames    []collectedFrame
	frameW    int
	frameH    int
	sheetSide int
}

type collectedFrame struct {
	data     []byte
	hash     string
	duration time.Duration
}

// assigned は各リソースに割り当てられた識別子です。
type assigned struct {
	frames   []string
	resource string
	texture  string
	scene    string
	sceneExt string
}

// Export はアセットをエクスポートします。処理は
// CollectResources → AssignUIDs → SerializeScene → SerializeResources →
// WriteFiles の順に進み、途中で失敗した場合はディスクに部分出力を残しません。
func (e *Exporter) Export(asset *domain.SpriteAsset) (*ExportArtifact, error) {
	if asset == nil {
		return nil, &ExportFormatError{Reason: "asset is nil"}
	}

	res, err := e.collectResources(asset)
	if err != nil {
		return nil, err
	}

	uids := assignUIDs(asset.ID, res)

	sheetFile := asset.Name + "_sheet.png"
	tresFile := asset.Name + "_frames.tres"
	tscnFile := asset.Name + ".tscn"

	tscnText := serializeScene(asset.Name, uids, tresFile)
	tresText := serializeFrames(res, uids, sheetFile)

	datas := make([][]byte, len(res.frames))
	for i, f := range res.frames {
		datas[i] = f.data
	}
	sheetPNG, err := imgutil.ComposeSheet(datas, res.frameW, res.frameH)
	if err != nil {
		return nil, &ExportFormatError{Reason: "spritesheet composition failed", Err: err}
	}

	artifact := &ExportArtifact{
		ScenePath:    filepath.Join(e.outputDir, tscnFile),
		ResourcePath: filepath.Join(e.outputDir, tresFile),
		SheetPath:    filepath.Join(e.outputDir, sheetFile),
		SceneUID:     uids.scene,
		ResourceUID:  uids.resource,
		TextureUID:   uids.texture,
		FrameUIDs:    uids.frames,
	}

	files := []outputFile{
		{artifact.SheetPath, sheetPNG},
		{artifact.ResourcePath, []byte(tresText)},
		{artifact.ScenePath, []byte(tscnText)},
	}
	if err := e.writeFiles(files); err != nil {
		return nil, err
	}

	slog.Info("エクスポートが完了しました",
		"asset_id", asset.ID, "scene", artifact.ScenePath, "frames", len(res.frames))
	return artifact, nil
}

// collectResources はフレームを Index 昇順に列挙し、画像バイト列を解決して
// 内容ハッシュを計算します。挿入順ではなく Index 順であることが決定性の前提です。
func (e *Exporter) collectResources(asset *domain.SpriteAsset) (*collected, error) {
	if len(asset.Frames) == 0 {
		return nil, &ExportFormatError{Reason: "asset has no frames"}
	}
	if asset.Width <= 0 || asset.Height <= 0 {
		return nil, &ExportFormatError{Reason: fmt.Sprintf("invalid frame size %dx%d", asset.Width, asset.Height)}
	}

	res := &collected{frameW: asset.Width, frameH: asset.Height}
	for i, f := range asset.Frames {
		if f.Index != i {
			return nil, &ExportFormatError{Reason: fmt.Sprintf("frame indices are not contiguous at %d", f.Index)}
		}

		data := f.Image
		if data == nil {
			if f.Path == "" {
				return nil, &ExportFormatError{Reason: fmt.Sprintf("frame %d has neither image bytes nor a path", i)}
			}
			loaded, err := os.ReadFile(f.Path)
			if err != nil {
				return nil, &ExportIOError{Path: f.Path, Err: err}
			}
			data = loaded
		}

		res.frames = append(res.frames, collectedFrame{
			data:     data,
			hash:     contentHash(data),
			duration: f.Duration,
		})
	}

	res.sheetSide = imgutil.SheetSize(res.frameW, res.frameH, len(res.frames))
	return res, nil
}

// assignUIDs は全リソースの識別子を内容から導出します。
func assignUIDs(assetID string, res *collected) *assigned {
	hashes := make([]string, len(res.frames))
	frameIDs := make([]string, len(res.frames))
	for i, f := range res.frames {
		hashes[i] = f.hash
		frameIDs[i] = frameSubID(assetID, i, f.hash)
	}
	resUID := resourceUID(assetID, hashes)
	return &assigned{
		frames:   frameIDs,
		resource: resUID,
		texture:  textureUID(assetID, hashes),
		scene:    sceneUID(assetID, resUID),
		sceneExt: sceneExtID(assetID),
	}
}

type outputFile struct {
	path string
	data []byte
}

// writeFiles は全ファイルを一時パスへ書き込んでから最終パスへ置き換えます。
// いずれかの書き込みに失敗した場合は一時ファイルを破棄し、既存の
// エクスポート結果には手を付けません。
func (e *Exporter) writeFiles(files []outputFile) error {
	tmps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range tmps {
			os.Remove(t)
		}
	}

	for _, f := range files {
		tmp, err := os.CreateTemp(e.outputDir, ".export-*.tmp")
		if err != nil {
			cleanup()
			return &ExportIOError{Path: e.outputDir, Err: err}
		}
		tmps = append(tmps, tmp.Name())
		if _, err := tmp.Write(f.data); err != nil {
			tmp.Close()
			cleanup()
			return &ExportIOError{Path: f.path, Err: err}
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return &ExportIOError{Path: f.path, Err: err}
		}
	}

	for i, f := range files {
		if err := os.Rename(tmps[i], f.path); err != nil {
			cleanup()
			return &ExportIOError{Path: f.path, Err: err}
		}
	}
	return nil
}
