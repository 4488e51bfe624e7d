package godot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// リソース識別子はすべて (アセットID, フレーム Index, フレーム内容ハッシュ) の
// 純関数として導出します。時刻や挿入順には依存しないため、変更のないアセットの
// 再エクスポートは同一の識別子を生みます。

// contentHash はフレーム画像バイト列の内容ハッシュを返します。
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func derive(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// frameSubID はフレーム1枚分の AtlasTexture サブリソース ID を導出します。
// 対象フレームの内容が変われば ID も変わり、他のフレームには影響しません。
func frameSubID(assetID string, index int, hash string) string {
	return "AtlasTexture_" + derive(assetID, fmt.Sprintf("%d", index), hash)[:6]
}

// resourceUID は SpriteFrames リソース（.tres）の UID を導出します。
func resourceUID(assetID string, frameHashes []string) string {
	parts := append([]string{assetID, "sprite_frames"}, frameHashes...)
	return "uid://" + derive(parts...)[:12]
}

// textureUID はシートテクスチャの UID を導出します。
func textureUID(assetID string, frameHashes []string) string {
	parts := append([]string{assetID, "sheet_texture"}, frameHashes...)
	return "uid://" + derive(parts...)[:12]
}

// sceneUID はシーン（.tscn）の UID を導出します。
func sceneUID(assetID, resUID string) string {
	return "uid://" + derive(assetID, "scene", resUID)[:12]
}

// sceneExtID はシーン内の ext_resource 参照 ID を導出します。
func sceneExtID(assetID string) string {
	return "1_" + derive(assetID, "scene_ext")[:6]
}
